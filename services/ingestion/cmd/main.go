package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobbots/services/ingestion/internal/app"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/events"
	"jobbots/services/ingestion/internal/messaging"
	"jobbots/services/ingestion/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("failed to sync logger: %v", err)
		}
	}()

	plan, err := config.LoadScrapePlan(cfg.ScrapePlanPath, cfg.Platforms)
	if err != nil {
		logger.Fatal("failed to load scrape plan", zap.Error(err))
	}

	logger.Info("starting ingestion service",
		zap.Strings("platforms", plan.Platforms),
		zap.Strings("keywords", plan.Keywords),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.Duration("polling_interval", cfg.PollingInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The scheduler publishes what it finds; the service itself must not.
	rt, err := app.NewRuntime(ctx, cfg, logger, app.RuntimeOptions{})
	if err != nil {
		logger.Fatal("failed to build job service", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := rt.Close(closeCtx); err != nil {
			logger.Error("failed to close job service", zap.Error(err))
		}
	}()

	var (
		publisher      messaging.Publisher
		eventPublisher scheduler.EventPublisher
	)
	if rt.Conn != nil {
		publisher = messaging.NewPublisher(rt.Conn, logger)
		eventPublisher = events.NewPublisher(rt.Conn, logger)
	} else {
		logger.Warn("NATS_URL not set, scraped jobs will not be published")
	}

	jobScheduler := scheduler.NewJobScheduler(rt.Service, publisher, eventPublisher, plan, logger, cfg)

	go func() {
		if err := jobScheduler.Start(ctx); err != nil {
			logger.Error("job scheduler failed", zap.Error(err))
		}
	}()

	logger.Info("ingestion service started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	jobScheduler.Stop()
	cancel()
	logger.Info("shutdown complete")
}
