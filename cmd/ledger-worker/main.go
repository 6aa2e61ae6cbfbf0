package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"incometracker/internal/backend"
	"incometracker/internal/cli"
	applog "incometracker/internal/log"
	"incometracker/internal/period"
	"incometracker/internal/worker"
)

func main() {
	backfillUser := flag.Int64("backfill-user", 0, "mirror this user's transactions before consuming events")
	backfillPeriod := flag.String("backfill-period", "year", "period to backfill: today, week, month, quarter, year or custom")
	backfillStart := flag.String("backfill-start", "", "start date (YYYY-MM-DD) for a custom backfill period")
	backfillEnd := flag.String("backfill-end", "", "end date (YYYY-MM-DD) for a custom backfill period")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting ledger-worker", "mirror", cfg.MirrorBackend)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(bcfg, logger.Logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store, err := factory.OpenStore(startCtx)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer store.Close()

	mirror, err := factory.Mirror(startCtx)
	if err != nil {
		logger.Error("Failed to initialize mirror", "error", err, "backend", cfg.MirrorBackend)
		os.Exit(1)
	}

	consumer, err := factory.Consumer(startCtx)
	if err != nil {
		logger.Error("Failed to initialize AMQP consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	mw := worker.NewMirrorWorker(store, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
		return consumer.ConsumeLedgerEvents(gctx, mw.HandleEvent)
	})

	if *backfillUser > 0 {
		iv, err := period.NewResolver().Resolve(*backfillPeriod, *backfillStart, *backfillEnd, time.Now())
		if err != nil {
			logger.Error("Invalid backfill period", "error", err, "period", *backfillPeriod)
			os.Exit(1)
		}
		g.Go(func() error {
			_, err := mw.Backfill(gctx, *backfillUser, iv)
			return err
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger worker failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
