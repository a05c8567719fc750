// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
// The scoring weights are fixed and deliberately not configurable.
type Config struct {
	// Rules controls personalization rule evaluation.
	Rules RulesConfig `json:"rules"`

	// Scoring tunes the sub-score functions.
	Scoring ScoringConfig `json:"scoring"`

	// Cache controls the per-(user, program) result cache.
	Cache CacheConfig `json:"cache"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// RulesConfig controls rule evaluation.
type RulesConfig struct {
	// MatchMode is "any" (a condition holds when one clause matches) or
	// "all" (every clause must match).
	// Default: any.
	MatchMode MatchMode `json:"match_mode"`
}

// ScoringConfig tunes the sub-score functions.
type ScoringConfig struct {
	// ExpectedCompletion is the completion percentage a user is expected to
	// reach in the active stage. Users below it get a higher progress score.
	// Default: 50.
	ExpectedCompletion float64 `json:"expected_completion"`

	// TimeSpentCeiling is the engagement at which the time-spent score saturates.
	// Default: 10m.
	TimeSpentCeiling time.Duration `json:"time_spent_ceiling"`

	// RecencyHalfLife is the time after which the recency score of a viewed item halves.
	// Default: 7 days.
	RecencyHalfLife time.Duration `json:"recency_half_life"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	// Enabled turns the result cache on.
	Enabled bool `json:"enabled"`

	// TTL is the optional lifetime of a cached result. Zero keeps results
	// until they are invalidated.
	TTL time.Duration `json:"ttl"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// ComputeTimeout bounds a full pipeline run including collaborator fetches.
	// Default: 5s.
	ComputeTimeout time.Duration `json:"compute_timeout"`

	// DefaultSectionCaps apply when a request does not supply caps.
	// Empty means unbounded.
	DefaultSectionCaps map[Section]int `json:"default_section_caps,omitempty"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			MatchMode: MatchAny,
		},
		Scoring: ScoringConfig{
			ExpectedCompletion: 50,
			TimeSpentCeiling:   10 * time.Minute,
			RecencyHalfLife:    7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Limits: LimitsConfig{
			ComputeTimeout: 5 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.Rules.MatchMode.Valid() {
		return fmt.Errorf("rules.match_mode must be one of: any, all, got %q", c.Rules.MatchMode)
	}

	if c.Scoring.ExpectedCompletion <= 0 || c.Scoring.ExpectedCompletion > 100 {
		return fmt.Errorf("scoring.expected_completion must be in (0, 100], got %f", c.Scoring.ExpectedCompletion)
	}
	if c.Scoring.TimeSpentCeiling <= 0 {
		return fmt.Errorf("scoring.time_spent_ceiling must be positive, got %v", c.Scoring.TimeSpentCeiling)
	}
	if c.Scoring.RecencyHalfLife <= 0 {
		return fmt.Errorf("scoring.recency_half_life must be positive, got %v", c.Scoring.RecencyHalfLife)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative, got %v", c.Cache.TTL)
	}

	if c.Limits.ComputeTimeout <= 0 {
		return fmt.Errorf("limits.compute_timeout must be positive, got %v", c.Limits.ComputeTimeout)
	}
	for sec, limit := range c.Limits.DefaultSectionCaps {
		if !sec.Valid() {
			return fmt.Errorf("limits.default_section_caps: unknown section %q", sec)
		}
		if limit < 0 {
			return fmt.Errorf("limits.default_section_caps[%s] must be non-negative, got %d", sec, limit)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Limits.DefaultSectionCaps != nil {
		out.Limits.DefaultSectionCaps = make(map[Section]int, len(c.Limits.DefaultSectionCaps))
		for k, v := range c.Limits.DefaultSectionCaps {
			out.Limits.DefaultSectionCaps[k] = v
		}
	}
	return &out
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type scoring struct {
		ExpectedCompletion float64 `json:"expected_completion"`
		TimeSpentCeiling   string  `json:"time_spent_ceiling"`
		RecencyHalfLife    string  `json:"recency_half_life"`
	}
	type cache struct {
		Enabled bool   `json:"enabled"`
		TTL     string `json:"ttl"`
	}
	type limits struct {
		ComputeTimeout     string          `json:"compute_timeout"`
		DefaultSectionCaps map[Section]int `json:"default_section_caps,omitempty"`
	}
	return json.Marshal(&struct {
		Rules   RulesConfig `json:"rules"`
		Scoring scoring     `json:"scoring"`
		Cache   cache       `json:"cache"`
		Limits  limits      `json:"limits"`
	}{
		Rules: c.Rules,
		Scoring: scoring{
			ExpectedCompletion: c.Scoring.ExpectedCompletion,
			TimeSpentCeiling:   c.Scoring.TimeSpentCeiling.String(),
			RecencyHalfLife:    c.Scoring.RecencyHalfLife.String(),
		},
		Cache: cache{
			Enabled: c.Cache.Enabled,
			TTL:     c.Cache.TTL.String(),
		},
		Limits: limits{
			ComputeTimeout:     c.Limits.ComputeTimeout.String(),
			DefaultSectionCaps: c.Limits.DefaultSectionCaps,
		},
	})
}
