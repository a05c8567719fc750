// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/careguide/internal/api"
	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/database"
	"github.com/tomtom215/careguide/internal/logging"
)

// publisherBreaker is the readiness key of the outbound event breaker.
const publisherBreaker = "event-publisher"

// initHTTPServer builds the ops HTTP server.
func initHTTPServer(cfg *config.Config, engine *engineComponents, db *database.DB, events *eventComponents) (*http.Server, error) {
	deps := api.Dependencies{
		Engine:      engine.Engine,
		Completions: db,
		Checks: []api.ReadinessCheck{
			{Name: "duckdb", Check: db.Ping},
			{Name: "events", Check: events.healthCheck},
		},
		BreakerStates: func() map[string]string {
			states := engine.breakerStates()
			if states == nil {
				states = make(map[string]string, 1)
			}
			states[publisherBreaker] = events.publisher.BreakerState()
			return states
		},
	}

	router, err := api.NewRouter(deps, middlewareConfig(&cfg.Server), logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create ops router: %w", err)
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}, nil
}

func middlewareConfig(cfg *config.ServerConfig) *api.ChiMiddlewareConfig {
	return &api.ChiMiddlewareConfig{
		RateLimitRequests: cfg.RateLimitReqs,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitDisabled: cfg.RateLimitDisabled,
	}
}
