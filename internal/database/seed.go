// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/careguide/internal/content"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/recommend"
)

// SeedCatalog writes every program of the catalog, replacing any stored
// copy. Each program is written in its own transaction so readers never
// see a half-seeded program.
func (db *DB) SeedCatalog(ctx context.Context, catalog *content.Catalog) error {
	if catalog == nil {
		return fmt.Errorf("%w: catalog is nil", recommend.ErrInvalidArgument)
	}

	for _, id := range catalog.ProgramIDs() {
		program, _ := catalog.Program(id)
		if err := db.seedProgram(ctx, program); err != nil {
			return fmt.Errorf("failed to seed program %q: %w", id, err)
		}
		logging.Info().
			Str("program_id", id).
			Int("stages", len(program.Stages)).
			Int("rules", len(program.Rules)).
			Msg("Seeded program")
	}
	return nil
}

func (db *DB) seedProgram(ctx context.Context, p *content.Program) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("seed", "programs", start, err) }()

	return withConflictRetry(ctx, "seed_program", func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := writeProgram(ctx, tx, p); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit program: %w", err)
		}
		return nil
	})
}

func writeProgram(ctx context.Context, tx *sql.Tx, p *content.Program) error {
	for _, table := range []string{"content_items", "program_stages", "personalization_rules", "programs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE program_id = ?`, p.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO programs (program_id, title) VALUES (?, ?)`, p.ID, p.Title); err != nil {
		return fmt.Errorf("failed to insert program: %w", err)
	}

	for i := range p.Stages {
		if err := writeStage(ctx, tx, p.ID, &p.Stages[i]); err != nil {
			return err
		}
	}

	for pos, rule := range p.Rules {
		condition, err := json.Marshal(rule.Condition)
		if err != nil {
			return fmt.Errorf("failed to encode condition of rule %q: %w", rule.ID, err)
		}
		adjustments, err := json.Marshal(rule.Adjustments)
		if err != nil {
			return fmt.Errorf("failed to encode adjustments of rule %q: %w", rule.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO personalization_rules (program_id, rule_id, position, name, condition, adjustments)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, rule.ID, pos, rule.Name, string(condition), string(adjustments)); err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", rule.ID, err)
		}
	}
	return nil
}

func writeStage(ctx context.Context, tx *sql.Tx, programID string, st *recommend.Stage) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO program_stages (program_id, stage_index, title) VALUES (?, ?, ?)`,
		programID, st.Index, st.Title); err != nil {
		return fmt.Errorf("failed to insert stage %d: %w", st.Index, err)
	}

	for _, sec := range st.DefinedSections() {
		for pos := range st.Sections[sec] {
			item := &st.Sections[sec][pos]
			tags, err := encodeList(item.Tags)
			if err != nil {
				return err
			}
			variants := item.Variants
			if variants == nil {
				variants = map[string]string{}
			}
			variantJSON, err := json.Marshal(variants)
			if err != nil {
				return fmt.Errorf("failed to encode variants of %q: %w", item.ID, err)
			}

			var priority sql.NullInt64
			if item.Priority != nil {
				priority = sql.NullInt64{Int64: int64(*item.Priority), Valid: true}
			}
			var relevance sql.NullFloat64
			if item.Relevance != nil {
				relevance = sql.NullFloat64{Float64: *item.Relevance, Valid: true}
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO content_items (program_id, stage_index, section, position, content_id, title,
					description, content_type, reading_time_minutes, tags, priority, relevance, is_new, variants)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				programID, st.Index, string(sec), pos, item.ID, item.Title,
				item.Description, string(item.ContentType), item.ReadingTimeMinutes, tags,
				priority, relevance, item.IsNew, string(variantJSON)); err != nil {
				return fmt.Errorf("failed to insert content %q: %w", item.ID, err)
			}
		}
	}
	return nil
}
