package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"review_pipeline/internal/adapters/httpx"
	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/domain"
)

// HTTP calls a model server exposing POST /predict {"text"} -> {"label"}.
type HTTP struct {
	base      string
	http      *httpx.Client
	maxTokens int
}

func NewHTTP(base string, timeout time.Duration, maxTokens int) *HTTP {
	return &HTTP{
		base:      strings.TrimRight(base, "/"),
		http:      httpx.New(&http.Client{Timeout: timeout}, "classifier", 50),
		maxTokens: maxTokens,
	}
}

func (c *HTTP) Name() string { return "http:" + c.base }

func (c *HTTP) Classify(ctx context.Context, text string) (l domain.Label, err error) {
	start := time.Now()
	defer func() { observability.ObserveClassify("http", err, time.Since(start)) }()

	payload, err := json.Marshal(map[string]any{"text": Truncate(text, c.maxTokens), "max_length": c.maxTokens})
	if err != nil {
		return 0, err
	}
	// prediction has no side effects, so failed attempts may be replayed
	resp, err := c.http.Do(ctx, "predict", true, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out struct {
		Label *int `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	if out.Label == nil {
		return 0, fmt.Errorf("prediction without label: %w", domain.ErrInvalidLabel)
	}
	l = domain.Label(*out.Label)
	if !l.Valid() {
		return 0, fmt.Errorf("label %d: %w", *out.Label, domain.ErrInvalidLabel)
	}
	return l, nil
}
