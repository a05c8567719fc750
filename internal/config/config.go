// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Database  DatabaseConfig  `koanf:"database"`
	NATS      NATSConfig      `koanf:"nats"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
}

// ServerConfig holds ops HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`

	// Per-IP limit on the ops API.
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings
type RecommendConfig struct {
	// MatchMode is how a rule's clauses combine: "any" or "all".
	MatchMode string `koanf:"match_mode" validate:"oneof=any all"`

	ExpectedCompletion float64       `koanf:"expected_completion" validate:"gt=0,lte=100"`
	TimeSpentCeiling   time.Duration `koanf:"time_spent_ceiling" validate:"gt=0"`
	RecencyHalfLife    time.Duration `koanf:"recency_half_life" validate:"gt=0"`
	ComputeTimeout     time.Duration `koanf:"compute_timeout" validate:"gt=0"`

	// SectionCaps bound each section when a request does not supply caps.
	SectionCaps map[string]int `koanf:"section_caps" validate:"dive,min=0"`
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is "memory" or "badger".
	Backend string `koanf:"backend" validate:"oneof=memory badger"`

	// Path is the badger directory. Empty keeps badger in memory.
	Path string `koanf:"path"`

	// Capacity bounds the memory backend. Zero uses the default.
	Capacity int           `koanf:"capacity" validate:"min=0"`
	TTL      time.Duration `koanf:"ttl" validate:"min=0"`

	// Background maintenance: expired-entry sweeps and badger value-log GC.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval" validate:"gt=0"`
	GCDiscardRatio      float64       `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path" validate:"required"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`

	// SeedCatalog writes the built-in programs on startup.
	SeedCatalog bool `koanf:"seed_catalog"`

	SkipIndexes bool `koanf:"skip_indexes"`
}

// NATSConfig holds event transport settings. When disabled, events travel
// over an in-process channel.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port" validate:"min=0,max=65535"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory" validate:"min=0"`
	MaxStore       int64  `koanf:"max_store" validate:"min=0"`

	StreamName      string        `koanf:"stream_name"`
	StreamRetention time.Duration `koanf:"stream_retention" validate:"min=0"`
	DuplicateWindow time.Duration `koanf:"duplicate_window" validate:"min=0"`

	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count" validate:"min=1,max=32"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait" validate:"min=0"`
	AckWait       time.Duration `koanf:"ack_wait" validate:"min=0"`
	MaxDeliver    int           `koanf:"max_deliver" validate:"min=0"`

	// Router middleware
	RouterRetryCount    int           `koanf:"router_retry_count" validate:"min=0"`
	RouterRetryInterval time.Duration `koanf:"router_retry_interval" validate:"min=0"`
	RouterDedupTTL      time.Duration `koanf:"router_dedup_ttl" validate:"min=0"`
	PoisonTopic         string        `koanf:"poison_topic"`
	CloseTimeout        time.Duration `koanf:"close_timeout" validate:"gt=0"`
}

// UpstreamConfig holds collaborator circuit breaker and rate limit settings
type UpstreamConfig struct {
	BreakerEnabled bool          `koanf:"breaker_enabled"`
	MaxRequests    uint32        `koanf:"max_requests" validate:"min=1"`
	Interval       time.Duration `koanf:"interval" validate:"min=0"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests    uint32        `koanf:"min_requests" validate:"min=1"`
	FailureRatio   float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`

	// RateLimit is calls per second per collaborator; zero disables it.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
	Burst     int     `koanf:"burst" validate:"min=0"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
