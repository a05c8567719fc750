// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("match mode is any", func(t *testing.T) {
		if cfg.Rules.MatchMode != MatchAny {
			t.Errorf("Rules.MatchMode = %s, want any", cfg.Rules.MatchMode)
		}
	})

	t.Run("scoring has valid defaults", func(t *testing.T) {
		if cfg.Scoring.ExpectedCompletion != 50 {
			t.Errorf("Scoring.ExpectedCompletion = %f, want 50", cfg.Scoring.ExpectedCompletion)
		}
		if cfg.Scoring.TimeSpentCeiling != 10*time.Minute {
			t.Errorf("Scoring.TimeSpentCeiling = %v, want 10m", cfg.Scoring.TimeSpentCeiling)
		}
		if cfg.Scoring.RecencyHalfLife != 7*24*time.Hour {
			t.Errorf("Scoring.RecencyHalfLife = %v, want 168h", cfg.Scoring.RecencyHalfLife)
		}
	})

	t.Run("cache enabled without expiry", func(t *testing.T) {
		if !cfg.Cache.Enabled || cfg.Cache.TTL != 0 {
			t.Errorf("Cache = %+v, want enabled with no TTL", cfg.Cache)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		return DefaultConfig()
	}

	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "all match mode",
			modify:    func(c *Config) { c.Rules.MatchMode = MatchAll },
			wantError: false,
		},
		{
			name:      "unknown match mode",
			modify:    func(c *Config) { c.Rules.MatchMode = "first" },
			wantError: true,
		},
		{
			name:      "zero expected completion",
			modify:    func(c *Config) { c.Scoring.ExpectedCompletion = 0 },
			wantError: true,
		},
		{
			name:      "expected completion over 100",
			modify:    func(c *Config) { c.Scoring.ExpectedCompletion = 120 },
			wantError: true,
		},
		{
			name:      "zero time spent ceiling",
			modify:    func(c *Config) { c.Scoring.TimeSpentCeiling = 0 },
			wantError: true,
		},
		{
			name:      "negative half-life",
			modify:    func(c *Config) { c.Scoring.RecencyHalfLife = -time.Hour },
			wantError: true,
		},
		{
			name:      "negative cache ttl",
			modify:    func(c *Config) { c.Cache.TTL = -time.Second },
			wantError: true,
		},
		{
			name:      "zero compute timeout",
			modify:    func(c *Config) { c.Limits.ComputeTimeout = 0 },
			wantError: true,
		},
		{
			name:      "unknown section cap",
			modify:    func(c *Config) { c.Limits.DefaultSectionCaps = map[Section]int{"sidebar": 2} },
			wantError: true,
		},
		{
			name:      "negative section cap",
			modify:    func(c *Config) { c.Limits.DefaultSectionCaps = map[Section]int{SectionQuickHelp: -1} },
			wantError: true,
		},
		{
			name:      "valid section caps",
			modify:    func(c *Config) { c.Limits.DefaultSectionCaps = map[Section]int{SectionQuickHelp: 3} },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	original.Scoring.ExpectedCompletion = 60
	original.Limits.DefaultSectionCaps = map[Section]int{SectionRecommended: 3}

	clone := original.Clone()

	t.Run("clone has same values", func(t *testing.T) {
		if clone.Scoring.ExpectedCompletion != original.Scoring.ExpectedCompletion {
			t.Errorf("clone.Scoring.ExpectedCompletion = %f, want %f", clone.Scoring.ExpectedCompletion, original.Scoring.ExpectedCompletion)
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		clone.Limits.DefaultSectionCaps[SectionRecommended] = 9
		if original.Limits.DefaultSectionCaps[SectionRecommended] != 3 {
			t.Error("modifying clone affected original")
		}
	})
}

func TestConfig_MarshalJSON(t *testing.T) {
	cfg := DefaultConfig()

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	t.Run("durations are strings", func(t *testing.T) {
		limits, ok := parsed["limits"].(map[string]interface{})
		if !ok {
			t.Fatal("limits field not found or wrong type")
		}
		if timeout, _ := limits["compute_timeout"].(string); timeout != "5s" {
			t.Errorf("limits.compute_timeout = %v, want \"5s\"", limits["compute_timeout"])
		}
	})

	t.Run("match mode is exposed", func(t *testing.T) {
		rules, _ := parsed["rules"].(map[string]interface{})
		if rules["match_mode"] != "any" {
			t.Errorf("rules.match_mode = %v, want any", rules["match_mode"])
		}
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	base := fingerprint(&Options{}, cfg)

	if got := fingerprint(&Options{ForceRefresh: true, Now: time.Now()}, cfg); got != base {
		t.Error("ForceRefresh or Now changed the fingerprint")
	}
	if got := fingerprint(&Options{ExcludeCompleted: true}, cfg); got == base {
		t.Error("ExcludeCompleted did not change the fingerprint")
	}

	capsA := &Options{SectionCaps: map[Section]int{SectionQuickHelp: 1, SectionRecommended: 2}}
	capsB := &Options{SectionCaps: map[Section]int{SectionRecommended: 2, SectionQuickHelp: 1}}
	if fingerprint(capsA, cfg) != fingerprint(capsB, cfg) {
		t.Error("fingerprint depends on map iteration order")
	}

	all := cfg.Clone()
	all.Rules.MatchMode = MatchAll
	if fingerprint(&Options{}, all) == base {
		t.Error("match mode did not change the fingerprint")
	}
}
