// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/careguide/internal/recommend"
)

// ContentEngine is the part of the recommendation engine the ops API reads.
type ContentEngine interface {
	GetPersonalizedContent(ctx context.Context, userID, programID string, opts recommend.Options) *recommend.PersonalizedContent
	CacheState(ctx context.Context, userID, programID string) recommend.CacheState
	GetMetrics() recommend.Metrics
}

// CompletionCounter reports how many items a user completed in a program.
type CompletionCounter interface {
	CompletionCount(ctx context.Context, userID, programID string) (int, error)
}

// ReadinessCheck is a named dependency check run by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies bundles what the router serves.
type Dependencies struct {
	Engine ContentEngine

	// Completions is optional.
	Completions CompletionCounter

	Checks []ReadinessCheck

	// BreakerStates is optional. Keys are breaker names, values are
	// closed, half-open or open.
	BreakerStates func() map[string]string
}

// Router owns the ops HTTP routes.
type Router struct {
	deps       Dependencies
	middleware *ChiMiddleware
	logger     zerolog.Logger
	startTime  time.Time
}

// NewRouter creates the ops router.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(deps Dependencies, mwConfig *ChiMiddlewareConfig, logger zerolog.Logger) (*Router, error) {
	if deps.Engine == nil {
		return nil, ErrMissingEngine
	}
	return &Router{
		deps:       deps,
		middleware: NewChiMiddleware(mwConfig),
		logger:     logger.With().Str("component", "api").Logger(),
		startTime:  time.Now(),
	}, nil
}

// Handler builds the chi route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(Recoverer(router.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// Health checks and scrapes are not rate limited.
	r.Get("/healthz", router.Healthz)
	r.Get("/readyz", router.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(RequestMetrics())
		r.Use(RequestLogger(router.logger))

		r.Route("/content/{userID}/{programID}", func(r chi.Router) {
			r.Get("/", router.ContentPreview)
			r.Get("/cache", router.ContentCacheState)
		})
		r.Get("/engine/metrics", router.EngineMetrics)
	})

	return r
}
