// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/careguide/config.yaml",
	"/etc/careguide/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8086,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			MatchMode:          "any",
			ExpectedCompletion: 50,
			TimeSpentCeiling:   10 * time.Minute,
			RecencyHalfLife:    7 * 24 * time.Hour,
			ComputeTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:             true,
			Backend:             "memory",
			Capacity:            0,
			TTL:                 0, // Results live until invalidated
			MaintenanceInterval: 5 * time.Minute,
			GCDiscardRatio:      0.5,
		},
		Database: DatabaseConfig{
			Path:                   "/data/careguide.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			SeedCatalog:            true,
		},
		NATS: NATSConfig{
			Enabled:             false, // In-process channel by default
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			Host:                "127.0.0.1",
			Port:                4222,
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           256 << 20, // 256MB
			MaxStore:            1 << 30,   // 1GB
			StreamName:          "CAREGUIDE",
			StreamRetention:     7 * 24 * time.Hour,
			DuplicateWindow:     2 * time.Minute,
			DurableName:         "careguide-invalidator",
			QueueGroup:          "careguide",
			SubscribersCount:    2,
			MaxReconnects:       -1, // Retry forever
			ReconnectWait:       2 * time.Second,
			AckWait:             30 * time.Second,
			MaxDeliver:          5,
			RouterRetryCount:    3,
			RouterRetryInterval: 100 * time.Millisecond,
			RouterDedupTTL:      5 * time.Minute,
			PoisonTopic:         "careguide.poison",
			CloseTimeout:        30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BreakerEnabled: true,
			MaxRequests:    3,
			Interval:       time.Minute,
			Timeout:        2 * time.Minute,
			MinRequests:    10,
			FailureRatio:   0.6,
			RateLimit:      0, // Unlimited
			Burst:          0,
		},
	}
}

// Load loads configuration using Koanf with layered sources.
//
// Configuration sources are loaded in order (later sources override earlier):
//  1. Built-in defaults (defaultConfig)
//  2. Config file (config.yaml, config.yml, or path from CONFIG_PATH env var)
//  3. Environment variables (explicit mapping in envTransformFunc)
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSectionCaps(k); err != nil {
		return nil, fmt.Errorf("failed to process section caps: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default locations.
// Returns the path to the first config file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// processSectionCaps expands RECOMMEND_SECTION_CAPS, given as
// "recommended=3,quickHelp=2", into a map.
func processSectionCaps(k *koanf.Koanf) error {
	const path = "recommend.section_caps"

	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	caps := make(map[string]interface{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return fmt.Errorf("%s: expected section=limit, got %q", path, part)
		}
		caps[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	// Replace rather than merge so file-provided caps do not linger.
	k.Delete(path)
	if len(caps) == 0 {
		return nil
	}
	return k.Set(path, caps)
}

// envTransformFunc transforms environment variable names to koanf config keys.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"shutdown_timeout":    "server.shutdown_timeout",
		"environment":         "server.environment",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		"recommend_match_mode":          "recommend.match_mode",
		"recommend_expected_completion": "recommend.expected_completion",
		"recommend_time_spent_ceiling":  "recommend.time_spent_ceiling",
		"recommend_recency_half_life":   "recommend.recency_half_life",
		"recommend_compute_timeout":     "recommend.compute_timeout",
		"recommend_section_caps":        "recommend.section_caps",

		"cache_enabled":              "cache.enabled",
		"cache_backend":              "cache.backend",
		"cache_path":                 "cache.path",
		"cache_capacity":             "cache.capacity",
		"cache_ttl":                  "cache.ttl",
		"cache_maintenance_interval": "cache.maintenance_interval",
		"cache_gc_discard_ratio":     "cache.gc_discard_ratio",

		"duckdb_path":         "database.path",
		"duckdb_max_memory":   "database.max_memory",
		"duckdb_threads":      "database.threads",
		"seed_catalog":        "database.seed_catalog",
		"duckdb_skip_indexes": "database.skip_indexes",

		"nats_enabled":          "nats.enabled",
		"nats_url":              "nats.url",
		"nats_embedded":         "nats.embedded_server",
		"nats_host":             "nats.host",
		"nats_port":             "nats.port",
		"nats_store_dir":        "nats.store_dir",
		"nats_max_memory":       "nats.max_memory",
		"nats_max_store":        "nats.max_store",
		"nats_stream_name":      "nats.stream_name",
		"nats_stream_retention": "nats.stream_retention",
		"nats_durable_name":     "nats.durable_name",
		"nats_queue_group":      "nats.queue_group",
		"nats_subscribers":      "nats.subscribers_count",
		"nats_router_retries":   "nats.router_retry_count",
		"nats_router_dedup_ttl": "nats.router_dedup_ttl",
		"nats_poison_topic":     "nats.poison_topic",

		"upstream_breaker_enabled": "upstream.breaker_enabled",
		"upstream_failure_ratio":   "upstream.failure_ratio",
		"upstream_min_requests":    "upstream.min_requests",
		"upstream_open_timeout":    "upstream.timeout",
		"upstream_rate_limit":      "upstream.rate_limit",
		"upstream_burst":           "upstream.burst",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
