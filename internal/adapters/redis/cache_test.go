package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "review_pipeline/internal/adapters/redis"
	"review_pipeline/internal/domain"
)

func TestLabelCache_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "sentiment:abc"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "sentiment:abc", domain.LabelNegative); err != nil {
		t.Fatalf("set: %v", err)
	}
	l, ok, err := c.Get(ctx, "sentiment:abc")
	if err != nil || !ok || l != domain.LabelNegative {
		t.Fatalf("got %v %v %v", l, ok, err)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "sentiment:abc"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestLabelCache_GarbageIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	if err := mr.Set("sentiment:x", "positive"); err != nil {
		t.Fatal(err)
	}
	c := redisad.New(mr.Addr(), "", 0, time.Minute)
	defer c.Close()

	if _, ok, err := c.Get(context.Background(), "sentiment:x"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}
