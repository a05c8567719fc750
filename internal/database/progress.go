// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/careguide/internal/recommend"
)

// GetProgramProgress implements recommend.ProgressService.
func (db *DB) GetProgramProgress(ctx context.Context, userID, programID string) (progress *recommend.ProgramProgress, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "program_progress", start, err) }()

	p := &recommend.ProgramProgress{UserID: userID, ProgramID: programID}
	err = db.conn.QueryRowContext(ctx,
		`SELECT current_stage, completion_percentage FROM program_progress WHERE user_id = ? AND program_id = ?`,
		userID, programID,
	).Scan(&p.CurrentStage, &p.CompletionPercentage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress of user %q in %q: %w", userID, programID, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query program progress: %w", err)
	}
	return p, nil
}

// UpsertProgramProgress inserts or replaces a patient's program position.
func (db *DB) UpsertProgramProgress(ctx context.Context, p *recommend.ProgramProgress) (err error) {
	if p == nil || p.UserID == "" || p.ProgramID == "" {
		return fmt.Errorf("%w: user and program ids are required", recommend.ErrInvalidArgument)
	}
	if p.CurrentStage < 1 {
		return fmt.Errorf("%w: stage %d", recommend.ErrInvalidArgument, p.CurrentStage)
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return fmt.Errorf("%w: completion %.1f outside [0,100]", recommend.ErrInvalidArgument, p.CompletionPercentage)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert", "program_progress", start, err) }()

	return withConflictRetry(ctx, "upsert_program_progress", func() error {
		_, execErr := db.conn.ExecContext(ctx, `
			INSERT INTO program_progress (user_id, program_id, current_stage, completion_percentage, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, program_id) DO UPDATE SET
				current_stage = EXCLUDED.current_stage,
				completion_percentage = EXCLUDED.completion_percentage,
				updated_at = EXCLUDED.updated_at`,
			p.UserID, p.ProgramID, p.CurrentStage, p.CompletionPercentage, db.now().UTC())
		if execErr != nil {
			return fmt.Errorf("failed to upsert program progress: %w", execErr)
		}
		return nil
	})
}
