// Package cli holds process initialization helpers and the interactive
// menu session.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenses/internal/config"
	applog "expenses/internal/log"
)

// SetupLogger builds the stderr logger for the given level and sets it as
// the slog default. Unknown levels fall back to the default level.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	if lvl, err := applog.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local use.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// ValidateConfig exits the process when the configuration is invalid.
func ValidateConfig(logger *applog.Logger, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
