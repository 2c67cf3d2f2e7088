// Package cli provides common CLI initialization utilities shared by
// cmd/budget and cmd/budget-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgetvs/internal/config"
	"budgetvs/internal/log"
)

// SetupLogger builds the process logger at the given level and installs it
// as the slog default. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	lvl, err := config.ParseLevel(level)
	logger := log.New(log.Config{Level: lvl, Output: os.Stdout})
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Task is a long-running unit of a process. It must return once ctx is done.
type Task func(ctx context.Context) error

// Run starts every task and blocks until SIGINT/SIGTERM arrives or one task
// fails. The shared context is then cancelled and shutdown runs with a
// fresh context bounded by timeout.
func Run(parent context.Context, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error, tasks ...Task) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", timeout.String())
		if shutdown == nil {
			return nil
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
