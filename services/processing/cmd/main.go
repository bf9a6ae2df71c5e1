package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jobbots/common/cache"
	"jobbots/common/cache/memory"
	"jobbots/common/cache/redis"
	"jobbots/common/database"
	"jobbots/common/database/schema"
	"jobbots/common/database/schema/migrations"
	"jobbots/common/logging"
	"jobbots/common/telemetry"
	"jobbots/services/processing/internal/config"
	"jobbots/services/processing/internal/events"
	"jobbots/services/processing/internal/processor"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "jobbots-processing"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Development: cfg.LogDev,
		Level:       cfg.LogLevel,
		Service:     serviceName,
	})
}

func newNATSConnection(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("processing-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func newClickHouseConnection(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (clickhouse.Conn, error) {
	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db.Conn(), nil
}

func newSeenCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) cache.Cache {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.CacheTTL
	opts.KeyPrefix = "jobbots:"

	var c cache.Cache
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, remembering processed jobs in memory")
		c = memory.New(opts)
	} else {
		opts.RedisURL = cfg.RedisAddr
		opts.RedisPassword = cfg.RedisPassword
		opts.RedisDB = cfg.RedisDB
		c = redis.New(opts)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c
}

func newStore(conn clickhouse.Conn) processor.Store {
	return processor.NewClickHouseStore(conn)
}

func newProcessor(p *processor.JobProcessor) events.Processor {
	return p
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (trace.Tracer, error) {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		CollectorURL:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return telemetry.GetTracer("jobbots/processing"), nil
}

func migrate(cfg *config.Config, conn clickhouse.Conn, logger *zap.Logger) error {
	if !cfg.RunMigrations {
		return nil
	}
	_, err := schema.NewMigrator(conn, logger).Migrate(context.Background(), migrations.All)
	return err
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newClickHouseConnection,
			newSeenCache,
			newStore,
			processor.NewJobProcessor,
			newProcessor,
			events.NewHandler,
			newTracer,
		),
		fx.Invoke(
			migrate,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
