package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"review_pipeline/internal/shared"
)

func TestOpenStore_SQLite(t *testing.T) {
	cfg := shared.Config{StoreBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "r.db")}
	s, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if err := s.CreateSheet(context.Background(), "Data Review", []string{"reviewId"}); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestOpenStore_SheetsNeedsCredentials(t *testing.T) {
	cfg := shared.Config{StoreBackend: "sheets", SpreadsheetID: "abc", CredFiles: []string{"/does/not/exist"}}
	if _, err := OpenStore(context.Background(), cfg); err == nil {
		t.Fatalf("expected credentials error")
	}
}

func TestOpenClassifier(t *testing.T) {
	c, err := OpenClassifier(context.Background(), shared.Config{ClassifierBackend: "http", ClassifierURL: "http://x", MaxTokens: 8})
	if err != nil || c.Name() != "http:http://x" {
		t.Fatalf("got %v, %v", c, err)
	}
	if _, err := OpenClassifier(context.Background(), shared.Config{ClassifierBackend: "bert"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestOpenLabelCache(t *testing.T) {
	if c := OpenLabelCache(context.Background(), shared.Config{}); c != nil {
		t.Fatalf("expected nil cache without REDIS_ADDR")
	}
	mr := miniredis.RunT(t)
	c := OpenLabelCache(context.Background(), shared.Config{RedisAddr: mr.Addr()})
	if c == nil {
		t.Fatalf("expected cache")
	}
	_ = c.Close()
}
