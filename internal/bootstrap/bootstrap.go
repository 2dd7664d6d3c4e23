// Package bootstrap turns a shared.Config into the adapters the commands use.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/adapters/classifier"
	redisad "review_pipeline/internal/adapters/redis"
	"review_pipeline/internal/adapters/sheets"
	"review_pipeline/internal/domain"
	"review_pipeline/internal/shared"
	"review_pipeline/internal/storage/sqlstore"
)

// Store is a SheetStore that may hold a connection to release.
type Store interface {
	domain.SheetStore
	io.Closer
}

type sheetsStore struct{ *sheets.Client }

func (sheetsStore) Close() error { return nil }

// OpenStore connects the backend named by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "sheets":
		creds, err := cfg.ResolveCredentials()
		if err != nil {
			return nil, err
		}
		c, err := sheets.NewWithCredentials(ctx, cfg.SheetsBase, cfg.SpreadsheetID, creds, cfg.SheetsRPS)
		if err != nil {
			return nil, err
		}
		log.Info().Str("spreadsheet", cfg.SpreadsheetID).Msg("sheets client ready")
		return sheetsStore{c}, nil
	case "mysql":
		r, err := sqlstore.Open(ctx, "mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("database connection ok")
		return r, nil
	case "sqlite":
		r, err := sqlstore.Open(ctx, "sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return r, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// OpenClassifier builds the backend named by CLASSIFIER_BACKEND.
func OpenClassifier(ctx context.Context, cfg shared.Config) (domain.Classifier, error) {
	switch cfg.ClassifierBackend {
	case "http":
		return classifier.NewHTTP(cfg.ClassifierURL, cfg.ClassifierTimeout, cfg.MaxTokens), nil
	case "openai":
		return classifier.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxTokens)
	case "gemini":
		return classifier.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.MaxTokens)
	}
	return nil, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", cfg.ClassifierBackend)
}

// OpenLabelCache returns nil when REDIS_ADDR is unset or unreachable; the
// pipeline then runs without a cache.
func OpenLabelCache(ctx context.Context, cfg shared.Config) *redisad.LabelCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.LabelCacheTTL)
	if err := c.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, label cache disabled")
		_ = c.Close()
		return nil
	}
	return c
}
