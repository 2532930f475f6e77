package main

import (
	"fmt"
	"os"

	"expenses/internal/backend"
	"expenses/internal/cli"
	"expenses/internal/config"
	applog "expenses/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local use (ignored when absent)
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cli.ValidateConfig(logger, cfg)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	store, err := backend.NewFactory(logger).CreateStore(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create expense store", applog.FieldError, err, applog.FieldBackend, backendConfig.Type)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close expense store", applog.FieldError, err)
		}
	}()

	if err := store.Open(ctx); err != nil {
		logger.Error("Failed to load expenses", applog.FieldError, err)
		fmt.Fprintf(os.Stderr, "Failed to load expenses: %v\n", err)
		return 1
	}

	logger.Info("Expense tracker started",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, backendConfig.Type)

	if err := cli.NewSession(store, os.Stdin, os.Stdout, logger).Run(ctx); err != nil {
		return 1
	}

	logger.Info("Expense tracker stopped", applog.FieldOperation, applog.OpShutdown)
	return 0
}
