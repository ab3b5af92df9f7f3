package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds one scheduled sweep run.
const sweepTimeout = 5 * time.Minute

// Watcher runs recurring sweeps on a cron schedule.
type Watcher struct {
	cron    *cron.Cron
	sweeper *Sweeper
	opts    Options
	logger  *zap.Logger
}

// NewWatcher wires a sweeper into a cron scheduler.
func NewWatcher(sweeper *Sweeper, opts Options, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cron:    cron.New(),
		sweeper: sweeper,
		opts:    opts,
		logger:  logger,
	}
}

// Start schedules the recurring sweep. schedule uses the standard
// 5-field cron syntax, e.g. "*/30 * * * *" for every half hour.
func (w *Watcher) Start(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.runSweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	w.logger.Info("watch mode started", zap.String("schedule", schedule))
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish, so
// half-deleted gateways are not left behind on shutdown.
func (w *Watcher) Stop() {
	w.logger.Info("stopping watcher")
	<-w.cron.Stop().Done()
}

func (w *Watcher) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := w.sweeper.Sweep(ctx, w.opts); err != nil {
		w.logger.Error("scheduled sweep failed", zap.Error(err))
	}
}
