// Package janitor removes leftover instances from shared Evolution API
// gateways. Instances are selected by naming convention (see MatchPattern)
// or wholesale, and every sweep is tagged so scheduled runs stay
// attributable in the logs.
package janitor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// InstanceAPI is the slice of the SDK the sweeper needs.
// *evolution.InstanceResource satisfies it.
type InstanceAPI interface {
	FetchAll(ctx context.Context) ([]models.Instance, error)
	Logout(ctx context.Context, instance string) (*models.InstanceResponse, error)
	Delete(ctx context.Context, instance string) (*models.InstanceResponse, error)
}

// Options tune one sweep.
type Options struct {
	// DryRun logs what would be deleted without touching the gateway.
	DryRun bool
	// All selects every instance instead of only disposable ones.
	All bool
}

// Result summarizes one sweep run.
type Result struct {
	RunID   string
	Scanned int
	Matched int
	Deleted []string
	Failed  map[string]error
	DryRun  bool
}

// Sweeper deletes disposable instances from a gateway.
type Sweeper struct {
	api    InstanceAPI
	logger *zap.Logger
}

// NewSweeper builds a sweeper on top of the given instance API.
func NewSweeper(api InstanceAPI, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{api: api, logger: logger}
}

// Sweep scans the gateway and deletes the matching instances. Each run
// carries a fresh uuid in every log line.
func (s *Sweeper) Sweep(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))

	instances, err := s.api.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch instances: %w", err)
	}

	result := &Result{
		RunID:   runID,
		Scanned: len(instances),
		Failed:  map[string]error{},
		DryRun:  opts.DryRun,
	}

	for _, inst := range instances {
		name := inst.Name
		if name == "" {
			name = inst.ID
		}
		pattern, disposable := MatchPattern(name)
		if !opts.All && !disposable {
			continue
		}
		result.Matched++

		reason := "all"
		if disposable {
			reason = pattern
		}
		if opts.DryRun {
			log.Info("would delete instance",
				zap.String("instance", name),
				zap.String("matched", reason),
				zap.String("status", string(inst.Status)),
			)
			continue
		}
		if err := s.remove(ctx, name); err != nil {
			log.Warn("failed to delete instance", zap.String("instance", name), zap.Error(err))
			result.Failed[name] = err
			continue
		}
		log.Info("instance deleted", zap.String("instance", name), zap.String("matched", reason))
		result.Deleted = append(result.Deleted, name)
	}

	log.Info("sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("matched", result.Matched),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("dry_run", opts.DryRun),
	)

	return result, nil
}

// Remove deletes one instance by name, regardless of naming patterns.
func (s *Sweeper) Remove(ctx context.Context, name string) error {
	if err := s.remove(ctx, name); err != nil {
		return fmt.Errorf("remove instance %s: %w", name, err)
	}
	s.logger.Info("instance removed", zap.String("instance", name))
	return nil
}

// remove logs the session out before deleting; the gateway refuses to
// delete a connected instance. Logout failures are expected for
// instances that never connected.
func (s *Sweeper) remove(ctx context.Context, name string) error {
	if _, err := s.api.Logout(ctx, name); err != nil {
		s.logger.Debug("logout before delete failed", zap.String("instance", name), zap.Error(err))
	}
	_, err := s.api.Delete(ctx, name)
	return err
}
