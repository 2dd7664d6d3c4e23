package httpx

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_pipeline/internal/adapters/observability"
)

// StatusError is a non-success response that was not retried (or ran out of
// retries). Body holds at most 4KiB for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote %d", e.Code)
	}
	return fmt.Sprintf("remote %d: %s", e.Code, e.Body)
}

// Client wraps an *http.Client with client-side rate limiting and retries on
// network errors, 429 and transient 5xx.
type Client struct {
	hc      *http.Client
	rl      *rate.Limiter
	service string
	retries int
}

func New(hc *http.Client, service string, rps int) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		hc:      hc,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		service: service,
		retries: 3,
	}
}

// Do sends the request produced by build. build is called once per attempt so
// bodies can be replayed. Only idempotent calls are retried; anything that
// may have been applied server-side is sent exactly once. A 2xx response is
// returned to the caller with its body open; anything else becomes a
// *StatusError.
func (c *Client) Do(ctx context.Context, endpoint string, idempotent bool, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	retries := c.retries
	if !idempotent {
		retries = 0
	}

	var lastErr error
	for i := 0; i <= retries; i++ {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < retries && SleepCtx(ctx, Backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		serr := readStatusError(resp)
		if !Retryable(resp.StatusCode) {
			return nil, serr
		}
		// Prefer server-provided Retry-After; otherwise exponential backoff.
		wait := RetryAfter(resp)
		if wait == 0 {
			wait = Backoff(i)
		}
		lastErr = serr
		if i < retries && SleepCtx(ctx, wait) {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, lastErr
	}
	return nil, lastErr
}

func readStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

func Retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// SleepCtx waits for d or returns false early if ctx is done.
func SleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RetryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func RetryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// Backoff returns 200ms doubling per attempt with up to +50% jitter.
func Backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
