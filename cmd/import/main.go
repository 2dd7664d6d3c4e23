package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/app"
	"review_pipeline/internal/bootstrap"
	"review_pipeline/internal/shared"
)

func main() {
	sheet := flag.String("sheet", "", "worksheet to load into (created when missing)")
	file := flag.String("file", "", "comma-separated file with a header row")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "import")

	if *sheet == "" || *file == "" {
		log.Fatal().Msg("usage: import -sheet NAME -file PATH")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("open csv failed")
	}
	defer f.Close()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer store.Close()

	n, err := app.ImportCSV(ctx, store, *sheet, f)
	if err != nil {
		log.Error().Err(err).Str("sheet", *sheet).Msg("import failed")
		os.Exit(1)
	}
	log.Info().Str("sheet", *sheet).Int("rows", n).Msg("import finished")
}
