package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"review_pipeline/internal/domain"
)

// ReviewQueries is the read side the handlers need.
type ReviewQueries interface {
	ListReviews(ctx context.Context, f domain.ReviewFilter) (domain.ReviewsPage, error)
	Summary(ctx context.Context) (domain.Summary, error)
}

// Handlers serves the persisted review sheet.
type Handlers struct{ Q ReviewQueries }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeJSON answers 304 when If-None-Match already names the current body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) queryFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "persisted sheet not found")
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("review query failed")
	writeProblem(w, http.StatusBadGateway, "Bad Gateway", "review store unavailable")
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ReviewFilter{Apps: strings.TrimSpace(q.Get("apps")), Limit: defaultLimit}

	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		f.Limit = l
	}
	switch s := strings.ToLower(strings.TrimSpace(q.Get("sentiment"))); s {
	case "", "unlabeled":
		f.Sentiment = s
	default:
		l, err := domain.ParseLabel(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid sentiment", "sentiment must be 0, 1 or unlabeled")
			return
		}
		f.Sentiment = l.String()
	}

	page, err := h.Q.ListReviews(r.Context(), f)
	if err != nil {
		h.queryFailed(w, r, err)
		return
	}
	writeJSON(w, r, page)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Q.Summary(r.Context())
	if err != nil {
		h.queryFailed(w, r, err)
		return
	}
	writeJSON(w, r, sum)
}
