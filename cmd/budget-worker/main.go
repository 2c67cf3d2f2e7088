package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetvs/internal/amqp"
	"budgetvs/internal/cache"
	"budgetvs/internal/cli"
	"budgetvs/internal/log"
	gsheet "budgetvs/internal/sheets/google"
	"budgetvs/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting budget-worker")

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror ready", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(sheetsClient, logger.WithComponent(log.ComponentWorker).Slog())

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	caches.Register(mirror.Seen())
	caches.StartCleanup(10 * time.Minute)

	consume := func(ctx context.Context) error {
		return mirror.Run(ctx, amqpClient)
	}
	shutdown := func(context.Context) error {
		caches.Stop()
		return amqpClient.Close()
	}

	if err := cli.Run(context.Background(), logger, 10*time.Second, shutdown, consume); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
