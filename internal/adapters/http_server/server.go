package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options configures the review API router.
type Options struct {
	Queries ReviewQueries
	Metrics http.Handler // mounted at /metrics when set
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewRouter builds the review API. Middlewares are registered before any
// route, as chi requires.
func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.RequestID, chimw.Recoverer)
	r.Use(instrument(o.Logger))
	if o.Timeout > 0 {
		r.Use(chimw.Timeout(o.Timeout))
	}

	h := &Handlers{Q: o.Queries}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	if o.Metrics != nil {
		r.Handle("/metrics", o.Metrics)
	}
	r.Get("/v1/reviews", h.listReviews)
	r.Get("/v1/reviews/summary", h.summary)
	return r
}
