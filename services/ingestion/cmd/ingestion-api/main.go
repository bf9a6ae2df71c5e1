package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jobbots/services/ingestion/internal/api"
	"jobbots/services/ingestion/internal/app"
	"jobbots/services/ingestion/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRuntime(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*app.Runtime, error) {
	rt, err := app.NewRuntime(context.Background(), cfg, logger, app.RuntimeOptions{
		Publish: true,
		Cache:   true,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rt.Close(ctx)
		},
	})
	return rt, nil
}

func newJobService(rt *app.Runtime) api.JobService {
	return rt.Service
}

func newServer(lc fx.Lifecycle, cfg *config.Config, handler *api.Handler, logger *zap.Logger) *http.Server {
	srv := api.NewServer(cfg.HTTPAddr, handler)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := api.Serve(ctx, srv, logger)
				if err != nil {
					logger.Error("api server failed", zap.Error(err))
				}
				done <- err
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case err := <-done:
				return err
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
	return srv
}

func main() {
	fxApp := fx.New(
		fx.Provide(
			config.LoadConfig,
			app.NewLogger,
			newRuntime,
			newJobService,
			api.NewHandler,
			newServer,
		),
		fx.Invoke(func(*http.Server) {}),
	)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	if err := fxApp.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}
