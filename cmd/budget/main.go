package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetvs/internal/amqp"
	"budgetvs/internal/backend"
	"budgetvs/internal/cache"
	"budgetvs/internal/cli"
	apphttp "budgetvs/internal/http"
	"budgetvs/internal/log"
	"budgetvs/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", backendCfg.Type.String())
		os.Exit(1)
	}

	// Publishing is optional: without AMQP_URL the service only logs.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	svc := services.NewBudgetService(result.Backend, publisher, logger)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	caches.Register(result.Backend)
	for _, c := range svc.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	serve := func(context.Context) error {
		logger.Info("Starting budget server", "port", cfg.Port, "backend", backendCfg.Type.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	shutdown := func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		caches.Stop()
		if amqpClient != nil {
			err = errors.Join(err, amqpClient.Close())
		}
		return errors.Join(err, result.Cleanup())
	}

	if err := cli.Run(context.Background(), logger, 30*time.Second, shutdown, serve); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
