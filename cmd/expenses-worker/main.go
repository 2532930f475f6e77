package main

import (
	"context"
	"errors"
	"os"
	"time"

	"expenses/internal/backend"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/events"
	applog "expenses/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cli.ValidateConfig(logger, cfg)

	logger.Info("Starting expenses-worker", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		return 1
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}

	syncWorker, err := backend.NewFactory(logger).CreateSyncWorker(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create sync worker", applog.FieldError, err)
		return 1
	}
	defer syncWorker.Close()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return 1
	}
	defer client.Close()

	go syncWorker.Run(ctx, cfg.SyncInterval)

	err = client.ConsumeExpenseChanges(ctx, syncWorker.HandleChange)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return 1
	}

	logger.Info("Worker shutdown complete",
		applog.FieldOperation, applog.OpShutdown,
		"last_sync", syncWorker.LastSync().Format(time.RFC3339))
	return 0
}
