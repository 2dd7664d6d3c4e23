package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "review_pipeline/internal/adapters/http_server"
	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/app"
	"review_pipeline/internal/bootstrap"
	"review_pipeline/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	reg := observability.InitRegistry()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer store.Close()
	q := app.NewQueryService(store, cfg.TargetSheet)

	router := server.NewRouter(server.Options{
		Queries: q,
		Metrics: observability.MetricsHandler(reg),
		Timeout: 15 * time.Second,
		Logger:  log.Logger,
	})
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("sheet", cfg.TargetSheet).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("API shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	// a separate listener only when METRICS_ADDR differs from the API address
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.HTTPAddr {
		observability.Serve(cfg.MetricsAddr, reg)
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
		store.Close()
		os.Exit(1)
	}
}
