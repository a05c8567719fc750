// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package main

import (
	"fmt"

	"github.com/tomtom215/careguide/internal/cache"
	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/content"
	"github.com/tomtom215/careguide/internal/database"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/recommend"
	"github.com/tomtom215/careguide/internal/upstream"
)

// engineComponents holds the engine and the breakers guarding its collaborators.
type engineComponents struct {
	Engine *recommend.Engine

	// guard is nil when breakers are disabled.
	guard *upstream.Guard
}

// breakerStates reports collaborator breaker states, or nil without breakers.
func (c *engineComponents) breakerStates() map[string]string {
	if c.guard == nil {
		return nil
	}
	return c.guard.States()
}

// buildEngineConfig maps the recommend and cache sections onto the engine config.
func buildEngineConfig(cfg *config.Config) (*recommend.Config, error) {
	ec := recommend.DefaultConfig()
	ec.Rules.MatchMode = recommend.MatchMode(cfg.Recommend.MatchMode)
	ec.Scoring.ExpectedCompletion = cfg.Recommend.ExpectedCompletion
	ec.Scoring.TimeSpentCeiling = cfg.Recommend.TimeSpentCeiling
	ec.Scoring.RecencyHalfLife = cfg.Recommend.RecencyHalfLife
	ec.Limits.ComputeTimeout = cfg.Recommend.ComputeTimeout
	ec.Cache.Enabled = cfg.Cache.Enabled
	ec.Cache.TTL = cfg.Cache.TTL

	if len(cfg.Recommend.SectionCaps) > 0 {
		ec.Limits.DefaultSectionCaps = make(map[recommend.Section]int, len(cfg.Recommend.SectionCaps))
		for name, limit := range cfg.Recommend.SectionCaps {
			ec.Limits.DefaultSectionCaps[recommend.Section(name)] = limit
		}
	}

	if err := ec.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return ec, nil
}

// upstreamSettings maps the upstream section onto breaker settings.
func upstreamSettings(cfg *config.UpstreamConfig) upstream.Settings {
	return upstream.Settings{
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		MinRequests:  cfg.MinRequests,
		FailureRatio: cfg.FailureRatio,
		RateLimit:    cfg.RateLimit,
		Burst:        cfg.Burst,
	}
}

// initEngine wires DuckDB as every collaborator, the catalog as the
// fallback provider and the event publisher as the completion notifier.
func initEngine(cfg *config.Config, db *database.DB, catalog *content.Catalog, store cache.Store, notifier recommend.CompletionNotifier) (*engineComponents, error) {
	ec, err := buildEngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	deps := recommend.Dependencies{
		Profiles:     db,
		Progress:     db,
		Interactions: db,
		Content:      db,
		Rules:        db,
		Telemetry:    db,
		Defaults:     catalog,
		Notifier:     notifier,
	}

	components := &engineComponents{}
	if cfg.Upstream.BreakerEnabled {
		components.guard = upstream.NewGuard(deps, upstreamSettings(&cfg.Upstream))
		deps = components.guard.Dependencies()
	}

	engine, err := recommend.NewEngine(ec, deps, store, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	components.Engine = engine

	logging.Info().
		Str("match_mode", string(ec.Rules.MatchMode)).
		Bool("cache_enabled", ec.Cache.Enabled).
		Bool("breakers", cfg.Upstream.BreakerEnabled).
		Msg("Recommendation engine initialized")

	return components, nil
}
