package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/app"
	"review_pipeline/internal/bootstrap"
	"review_pipeline/internal/domain"
	"review_pipeline/internal/shared"
)

const (
	exitOK            = 0
	exitFailed        = 1
	exitMissingColumn = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "sentiment")

	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

// run does the whole job and returns the exit code; store and cache are
// closed before it returns.
func run(ctx context.Context, cfg shared.Config) int {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitFailed
	}
	if err := cfg.ValidateClassifier(); err != nil {
		log.Error().Err(err).Msg("invalid classifier configuration")
		return exitFailed
	}
	reg := observability.InitRegistry()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("store init failed")
		return exitFailed
	}
	defer store.Close()

	clf, err := bootstrap.OpenClassifier(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("classifier init failed")
		return exitFailed
	}
	var cache domain.LabelCache
	if c := bootstrap.OpenLabelCache(ctx, cfg); c != nil {
		defer c.Close()
		cache = c
	}
	log.Info().Str("classifier", clf.Name()).Bool("cache", cache != nil).Str("sheet", cfg.TargetSheet).Msg("sentiment labeling starting")

	res, err := app.NewLabelService(store, clf, cache, cfg.TargetSheet).LabelMissing(ctx)

	observability.ObserveRows("sentiment", "selected", res.Selected)
	observability.ObserveRows("sentiment", "labeled", res.Labeled)
	observability.ObserveRows("sentiment", "skipped", res.Skipped)
	observability.ObserveRows("sentiment", "failed", res.Failed)
	observability.ObserveRows("sentiment", "cached", res.Cached)
	observability.ObserveJob("sentiment", err)
	if perr := observability.Push(cfg.PushGateway, "review_sentiment", reg); perr != nil {
		log.Warn().Err(perr).Msg("metrics push failed")
	}

	switch {
	case errors.Is(err, domain.ErrMissingColumn):
		log.Error().Err(err).Msg("target sheet has no Sentiment column")
		return exitMissingColumn
	case err != nil:
		log.Error().Err(err).Msg("sentiment labeling failed")
		return exitFailed
	}
	if res.Selected == 0 {
		log.Info().Msg("no rows need sentiment; sheet unchanged")
	}
	log.Info().
		Int("labeled", res.Labeled).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Int("cached", res.Cached).
		Msgf("sentiment labeling finished at %s WIB", time.Now().In(app.WIB).Format(app.TimestampLayout))
	return exitOK
}
