// Package app assembles the ingestion components from configuration for
// the daemon, the API server and the CLI.
package app

import (
	"context"
	stderrors "errors"

	"jobbots/common/cache"
	"jobbots/common/cache/memory"
	"jobbots/common/cache/redis"
	"jobbots/common/logging"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/analyzer"
	"jobbots/services/ingestion/internal/bots"
	"jobbots/services/ingestion/internal/browser"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/events"
	"jobbots/services/ingestion/internal/messaging"
	"jobbots/services/ingestion/internal/page"
	"jobbots/services/ingestion/internal/service"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ServiceName    = "jobbots-ingestion"
	ServiceVersion = "0.1.0"
	cacheKeyPrefix = "jobbots:"
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Development: cfg.LogDev,
		Level:       cfg.LogLevel,
		Service:     ServiceName,
	})
}

// NewCache uses Redis when REDIS_ADDR is set and memory otherwise.
func NewCache(cfg *config.Config, logger *zap.Logger) cache.Cache {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.CacheTTL
	opts.KeyPrefix = cacheKeyPrefix

	if cfg.RedisAddr == "" {
		logger.Info("using in-memory cache")
		return memory.New(opts)
	}
	opts.RedisURL = cfg.RedisAddr
	opts.RedisPassword = cfg.RedisPassword
	opts.RedisDB = cfg.RedisDB
	logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	return redis.New(opts)
}

func NewDriver(cfg *config.Config, logger *zap.Logger) *browser.Driver {
	return browser.NewDriver(browser.DriverOptions{
		BrowsersPath:    cfg.PlaywrightBrowsersPath,
		NodeJSPath:      cfg.PlaywrightNodeJSPath,
		DriverDirectory: cfg.PlaywrightDriverDir,
		Install:         cfg.InstallBrowsers,
	}, logger)
}

// NewPageOpener returns pages for the configured FETCH_MODE. In browser
// mode the driver is started on first use.
func NewPageOpener(cfg *config.Config, driver *browser.Driver) bots.PageOpener {
	if cfg.FetchMode == config.FetchModeHTTP {
		return func(string) (page.Page, error) {
			return page.NewHTTPPage(page.HTTPOptions{
				Timeout:   cfg.PageTimeout,
				UserAgent: cfg.UserAgent,
			}), nil
		}
	}

	return func(platform string) (page.Page, error) {
		if err := driver.Start(); err != nil {
			return nil, err
		}
		headless := cfg.BrowserHeadless
		return driver.Launch(browser.LaunchOptions{
			Headless:    &headless,
			Channel:     cfg.BrowserChannel,
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.PageTimeout,
			CookiesPath: browser.CookiesPath(cfg.CookiesDir, platform),
		})
	}
}

func NewBotFactory(cfg *config.Config, open bots.PageOpener, logger *zap.Logger) service.BotFactory {
	return func(platform string) (bots.Bot, error) {
		p, err := open(platform)
		if err != nil {
			return nil, err
		}
		bot, err := bots.New(platform, p, bots.Options{WaitTimeout: cfg.PageTimeout}, logger)
		if err != nil {
			p.Close()
			return nil, err
		}
		return bot, nil
	}
}

func NewAnalyzer(cfg *config.Config, logger *zap.Logger) analyzer.Analyzer {
	return analyzer.New(analyzer.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.ChatTimeout,
	}, logger)
}

type RuntimeOptions struct {
	// Publish sends fresh service results to NATS when NATS_URL is set.
	Publish bool
	// Cache enables search result caching.
	Cache bool
}

// Runtime is a wired job service and everything it needs closed.
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *service.JobService
	// Conn is nil when NATS_URL is unset.
	Conn *nats.Conn

	cache          cache.Cache
	driver         *browser.Driver
	shutdownTracer func(context.Context) error
}

func NewRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts RuntimeOptions) (*Runtime, error) {
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		CollectorURL:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:         cfg,
		Logger:         logger,
		driver:         NewDriver(cfg, logger),
		shutdownTracer: shutdownTracer,
	}

	if cfg.NATSURL != "" {
		conn, err := messaging.Connect(logger, cfg)
		if err != nil {
			shutdownTracer(ctx)
			return nil, err
		}
		rt.Conn = conn
	}

	svcOpts := service.Options{
		Platforms: cfg.Platforms,
		CacheTTL:  cfg.CacheTTL,
		Analyzer:  NewAnalyzer(cfg, logger),
	}
	if opts.Cache {
		rt.cache = NewCache(cfg, logger)
		svcOpts.Cache = rt.cache
	}
	if opts.Publish && rt.Conn != nil {
		svcOpts.Publisher = messaging.NewPublisher(rt.Conn, logger)
		svcOpts.Analyses = events.NewPublisher(rt.Conn, logger)
	}

	factory := NewBotFactory(cfg, NewPageOpener(cfg, rt.driver), logger)
	rt.Service = service.New(factory, svcOpts, logger)
	return rt, nil
}

// Close releases in reverse order of construction.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.Service.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.driver.Stop(); err != nil {
		errs = append(errs, err)
	}
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Conn != nil {
		if err := r.Conn.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.shutdownTracer(ctx); err != nil {
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}
