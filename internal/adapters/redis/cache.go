package redisad

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/domain"
)

// LabelCache stores classifier labels under caller-chosen keys.
type LabelCache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *LabelCache {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

func NewFromClient(c *redis.Client, ttl time.Duration) *LabelCache {
	return &LabelCache{c: c, ttl: ttl}
}

func (r *LabelCache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *LabelCache) Close() error { return r.c.Close() }

func (r *LabelCache) Get(ctx context.Context, key string) (domain.Label, bool, error) {
	v, err := r.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	l, err := domain.ParseLabel(v)
	if err != nil {
		// stale or foreign value: treat as a miss and let the caller overwrite it
		observability.ObserveCache("redis", "miss")
		return 0, false, nil
	}
	observability.ObserveCache("redis", "hit")
	return l, true, nil
}

func (r *LabelCache) Set(ctx context.Context, key string, l domain.Label) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, strconv.Itoa(int(l)), r.ttl).Err()
}
