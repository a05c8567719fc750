// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package main is the entry point of the Careguide server.
//
// Careguide personalizes the content a care program shows each patient. It
// scores the authored content of the patient's current stage, applies the
// program's personalization rules and caches the result per (user, program)
// until progress, views or catalog changes invalidate it.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file and environment variables (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Database: DuckDB schema, migrations and the built-in program catalog
//  4. Result cache: in-memory LRU or Badger
//  5. Events: in-process channel or NATS JetStream (embedded or external)
//  6. Recommendation engine: collaborators behind per-collaborator circuit breakers
//  7. Event router: progress, view and catalog events invalidate cached results
//  8. Ops HTTP server: health, readiness, metrics and content preview
//
// Long-running services run under a suture supervisor tree:
//
//	careguide
//	├── data-layer:      cache-maintenance, duckdb-checkpoint
//	├── messaging-layer: event-router
//	└── api-layer:       ops-http
//
// # Configuration
//
// See internal/config for every key. Common environment variables:
//
//	HTTP_PORT=8086
//	LOG_LEVEL=debug
//	DUCKDB_PATH=/data/careguide.duckdb
//	CACHE_BACKEND=badger CACHE_PATH=/data/cache
//	NATS_ENABLED=true NATS_EMBEDDED=true
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server and the event router, then the transport, cache and database are
// closed in reverse order of creation.
package main
