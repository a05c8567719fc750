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

	"github.com/tomtom215/careguide/internal/recommend"
)

// GetContentInteractions implements recommend.InteractionService. A
// patient with no interactions gets an empty map.
func (db *DB) GetContentInteractions(ctx context.Context, userID, programID string) (out map[string]recommend.ContentInteraction, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "content_interactions", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT content_id, view_count, time_spent_seconds, completed, last_viewed_at
		FROM content_interactions
		WHERE user_id = ? AND program_id = ?`,
		userID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query content interactions: %w", err)
	}
	defer closeWithLog(rows, "interaction rows")

	out = make(map[string]recommend.ContentInteraction)
	for rows.Next() {
		ci := recommend.ContentInteraction{UserID: userID, ProgramID: programID}
		var lastViewed sql.NullTime
		if err := rows.Scan(&ci.ContentID, &ci.ViewCount, &ci.TimeSpentSeconds, &ci.Completed, &lastViewed); err != nil {
			return nil, fmt.Errorf("failed to scan content interaction: %w", err)
		}
		if lastViewed.Valid {
			ci.LastViewedAt = lastViewed.Time
		}
		out[ci.ContentID] = ci
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content interactions: %w", err)
	}
	return out, nil
}

// RecordContentCompletion implements recommend.TelemetryWriter. The
// interaction is marked completed and the completion is appended to the log
// in one transaction.
func (db *DB) RecordContentCompletion(ctx context.Context, userID, programID, contentID string) (err error) {
	if userID == "" || programID == "" || contentID == "" {
		return fmt.Errorf("%w: user, program and content ids are required", recommend.ErrInvalidArgument)
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert", "content_interactions", start, err) }()

	now := db.now().UTC()
	return withConflictRetry(ctx, "record_completion", func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_interactions (user_id, program_id, content_id, view_count, completed, last_viewed_at)
			VALUES (?, ?, ?, 1, true, ?)
			ON CONFLICT (user_id, program_id, content_id) DO UPDATE SET
				completed = true,
				last_viewed_at = EXCLUDED.last_viewed_at`,
			userID, programID, contentID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to mark content completed: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO completion_log (user_id, program_id, content_id, completed_at) VALUES (?, ?, ?, ?)`,
			userID, programID, contentID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to append completion log: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit completion: %w", err)
		}
		return nil
	})
}

// RecordContentView adds one view and the time spent on it.
func (db *DB) RecordContentView(ctx context.Context, userID, programID, contentID string, timeSpent time.Duration) (err error) {
	if userID == "" || programID == "" || contentID == "" {
		return fmt.Errorf("%w: user, program and content ids are required", recommend.ErrInvalidArgument)
	}
	if timeSpent < 0 {
		return fmt.Errorf("%w: negative time spent", recommend.ErrInvalidArgument)
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert", "content_interactions", start, err) }()

	seconds := int(timeSpent / time.Second)
	return withConflictRetry(ctx, "record_view", func() error {
		_, execErr := db.conn.ExecContext(ctx, `
			INSERT INTO content_interactions (user_id, program_id, content_id, view_count, time_spent_seconds, last_viewed_at)
			VALUES (?, ?, ?, 1, ?, ?)
			ON CONFLICT (user_id, program_id, content_id) DO UPDATE SET
				view_count = content_interactions.view_count + 1,
				time_spent_seconds = content_interactions.time_spent_seconds + EXCLUDED.time_spent_seconds,
				last_viewed_at = EXCLUDED.last_viewed_at`,
			userID, programID, contentID, seconds, db.now().UTC())
		if execErr != nil {
			return fmt.Errorf("failed to record content view: %w", execErr)
		}
		return nil
	})
}

// CompletionCount returns how many completions were logged for a patient
// in a program.
func (db *DB) CompletionCount(ctx context.Context, userID, programID string) (count int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "completion_log", start, err) }()

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completion_log WHERE user_id = ? AND program_id = ?`,
		userID, programID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}
