package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/app"
	"review_pipeline/internal/bootstrap"
	"review_pipeline/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "merge")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	reg := observability.InitRegistry()

	log.Info().
		Str("backend", cfg.StoreBackend).
		Strs("sources", cfg.SourceSheets).
		Str("target", cfg.TargetSheet).
		Msg("merge starting")

	typos, path, err := app.LoadTypoDictionary(cfg.TypoFiles...)
	if err != nil {
		log.Fatal().Err(err).Msg("typo dictionary not available")
	}
	log.Info().Str("path", path).Int("entries", len(typos)).Msg("typo dictionary loaded")

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer store.Close()

	svc := app.NewMergeService(store, app.NewCleaner(typos), app.MergeOptions{
		Sources:    cfg.SourceSheets,
		Target:     cfg.TargetSheet,
		PlayOrigin: cfg.PlayOrigin,
	})
	res, err := svc.Run(ctx)

	for name, n := range res.Sources {
		observability.ObserveRows("merge", "read:"+name, n)
	}
	observability.ObserveRows("merge", "merged", res.Merged)
	observability.ObserveRows("merge", "inserted", res.Inserted)
	observability.ObserveJob("merge", err)
	if perr := observability.Push(cfg.PushGateway, "review_merge", reg); perr != nil {
		log.Warn().Err(perr).Msg("metrics push failed")
	}

	if err != nil {
		log.Error().Err(err).Msg("merge failed")
		store.Close()
		os.Exit(1)
	}
	log.Info().
		Int("merged", res.Merged).
		Int("inserted", res.Inserted).
		Msgf("merge & cleaning finished at %s WIB", time.Now().In(app.WIB).Format(app.TimestampLayout))
}
