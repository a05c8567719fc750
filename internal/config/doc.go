// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package config provides centralized configuration management for Careguide.

# Configuration Sources

Configuration is layered with koanf; later sources override earlier ones:
  - Built-in defaults
  - A YAML file: CONFIG_PATH, or config.yaml / config.yml in the working
    directory, or /etc/careguide/config.yaml
  - Environment variables, through an explicit name mapping

Unmapped environment variables are ignored.

# Sections

  - server: ops HTTP listener, timeouts and per-IP rate limit
  - logging: zerolog level, format and caller info
  - recommend: rule match mode, scoring tuning, compute timeout, section caps
  - cache: result cache backend (memory or badger), TTL and maintenance
  - database: DuckDB path and tuning, catalog seeding
  - nats: event transport (in-process channel, external or embedded NATS)
  - upstream: collaborator circuit breakers and rate limits

# Environment Variables

Selected mappings:
  - HTTP_HOST, HTTP_PORT, ENVIRONMENT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - RECOMMEND_MATCH_MODE: any or all
  - RECOMMEND_SECTION_CAPS: "recommended=3,quickHelp=2"
  - CACHE_BACKEND, CACHE_PATH, CACHE_TTL
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, SEED_CATALOG
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR
  - UPSTREAM_BREAKER_ENABLED, UPSTREAM_FAILURE_RATIO, UPSTREAM_RATE_LIMIT

# Validation

Field constraints are declared as validate tags and checked with
go-playground/validator through the validation package; errors name the
koanf key. Cross-field rules (NATS URL or embedded store, badger path in
production, burst with rate limit) are checked afterwards.
*/
package config
