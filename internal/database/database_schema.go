// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns the timeout context used for DDL.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements.
//
// JSON-valued columns hold goccy/go-json encoded text.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id TEXT PRIMARY KEY,
			age INTEGER NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT '',
			preferences TEXT NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS program_progress (
			user_id TEXT NOT NULL,
			program_id TEXT NOT NULL,
			current_stage INTEGER NOT NULL,
			completion_percentage DOUBLE NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, program_id)
		);`,

		`CREATE TABLE IF NOT EXISTS content_interactions (
			user_id TEXT NOT NULL,
			program_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			view_count INTEGER NOT NULL DEFAULT 0,
			time_spent_seconds INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT false,
			last_viewed_at TIMESTAMP,
			PRIMARY KEY (user_id, program_id, content_id)
		);`,

		`CREATE TABLE IF NOT EXISTS programs (
			program_id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS program_stages (
			program_id TEXT NOT NULL,
			stage_index INTEGER NOT NULL,
			title TEXT NOT NULL,
			PRIMARY KEY (program_id, stage_index)
		);`,

		// position keeps authored order within a section
		`CREATE TABLE IF NOT EXISTS content_items (
			program_id TEXT NOT NULL,
			stage_index INTEGER NOT NULL,
			section TEXT NOT NULL,
			position INTEGER NOT NULL,
			content_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL,
			reading_time_minutes INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			priority INTEGER,
			relevance DOUBLE,
			is_new BOOLEAN NOT NULL DEFAULT false,
			variants TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (program_id, stage_index, section, content_id)
		);`,

		`CREATE TABLE IF NOT EXISTS personalization_rules (
			program_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL,
			adjustments TEXT NOT NULL,
			PRIMARY KEY (program_id, rule_id)
		);`,

		`CREATE TABLE IF NOT EXISTS completion_log (
			user_id TEXT NOT NULL,
			program_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			completed_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates the secondary indexes used by lookups
func (db *DB) createIndexes() error {
	if db.cfg.SkipIndexes {
		return nil
	}

	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_content_items_lookup ON content_items(program_id, content_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completion_log_user ON completion_log(user_id, program_id);`,
	}
	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
