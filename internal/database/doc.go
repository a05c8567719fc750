// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package database is the DuckDB-backed store behind the recommendation
// engine's collaborators.
//
// # Overview
//
// A single *DB implements every read and write contract the engine
// consumes: profiles, program progress, content interactions, stage
// content, content lookup, personalization rules and completion telemetry.
// Authored programs are loaded from a content.Catalog with SeedCatalog.
//
// # Files
//
//   - database.go: lifecycle (open, checkpoint, close, ping)
//   - database_connection.go: pool configuration and error classification
//   - database_schema.go: table and index creation
//   - migrations.go: versioned schema migrations
//   - seed.go: catalog seeding
//   - profiles.go, progress.go, interactions.go: patient data
//   - content.go, rules.go: authored content and rules
//
// # Encoding
//
// List and map columns (preferences, tags, variants, rule conditions and
// adjustments) are stored as JSON text encoded with goccy/go-json, which
// keeps the schema free of extension types.
//
// # Thread Safety
//
// All methods are safe for concurrent use; DuckDB serializes writers and
// upserts are retried on transaction conflicts.
package database
