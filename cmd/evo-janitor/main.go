// evo-janitor removes leftover instances from an Evolution API gateway.
//
// Shared gateways accumulate throwaway instances from QR experiments and
// integration runs; this tool lists them, deletes them by name or by
// naming convention, and can keep sweeping on a cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/evogo/evolution"
	"github.com/evogo/evolution/internal/janitor"
	"github.com/evogo/evolution/pkg/logger"
)

func main() {
	var (
		list      = flag.Bool("list", false, "list instances with status, state and naming verdict")
		remove    = flag.String("remove", "", "delete one instance by name")
		cleanTest = flag.Bool("clean-test", false, "delete instances whose names mark them as disposable")
		all       = flag.Bool("all", false, "delete every instance (requires -yes)")
		yes       = flag.Bool("yes", false, "confirm destructive operations")
		dryRun    = flag.Bool("dry-run", false, "log deletions without performing them")
		watch     = flag.String("watch", "", "cron expression for recurring sweeps, e.g. \"*/30 * * * *\"")
		envFile   = flag.String("env", "", "load environment from this file instead of .env")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall deadline for one-shot operations")
	)
	flag.Parse()

	cfg, err := evolution.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	client, err := evolution.New(*cfg, baseLogger.Named("sdk"))
	if err != nil {
		baseLogger.Fatal("failed to build client", zap.Error(err))
	}
	defer client.Close()

	sweeper := janitor.NewSweeper(client.Instance, baseLogger.Named("janitor"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	probeCtx, probeCancel := context.WithTimeout(ctx, 10*time.Second)
	if !client.HealthCheck(probeCtx) {
		baseLogger.Warn("gateway health probe failed, proceeding anyway", zap.String("base_url", cfg.BaseURL))
	}
	probeCancel()

	switch {
	case *list:
		runCtx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		instances, err := client.Instance.FetchAll(runCtx)
		if err != nil {
			baseLogger.Fatal("failed to fetch instances", zap.Error(err))
		}
		fmt.Print(janitor.FormatTable(instances))

	case *remove != "":
		if *dryRun {
			baseLogger.Info("dry run, not removing instance", zap.String("instance", *remove))
			return
		}
		runCtx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		if err := sweeper.Remove(runCtx, *remove); err != nil {
			baseLogger.Fatal("remove failed", zap.Error(err))
		}

	case *cleanTest, *all:
		if *all && !*yes && !*dryRun {
			fmt.Fprintln(os.Stderr, "refusing to delete every instance without -yes")
			os.Exit(2)
		}
		opts := janitor.Options{DryRun: *dryRun, All: *all}

		if *watch != "" {
			watcher := janitor.NewWatcher(sweeper, opts, baseLogger.Named("watcher"))
			if err := watcher.Start(*watch); err != nil {
				baseLogger.Fatal("failed to start watch mode", zap.Error(err))
			}
			<-ctx.Done()
			baseLogger.Info("shutdown signal received")
			watcher.Stop()
			return
		}

		runCtx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		result, err := sweeper.Sweep(runCtx, opts)
		if err != nil {
			baseLogger.Fatal("sweep failed", zap.Error(err))
		}
		if len(result.Failed) > 0 {
			os.Exit(1)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}
