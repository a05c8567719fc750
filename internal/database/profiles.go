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

	"github.com/goccy/go-json"

	"github.com/tomtom215/careguide/internal/recommend"
)

// GetUserProfile implements recommend.ProfileService.
func (db *DB) GetUserProfile(ctx context.Context, userID string) (profile *recommend.UserProfile, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "user_profiles", start, err) }()

	var prefs string
	p := &recommend.UserProfile{ID: userID}
	err = db.conn.QueryRowContext(ctx,
		`SELECT age, gender, preferences FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&p.Age, &p.Gender, &prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", userID, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user profile: %w", err)
	}

	if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences of user %q: %w", userID, err)
	}
	return p, nil
}

// UpsertUserProfile inserts or replaces a profile.
func (db *DB) UpsertUserProfile(ctx context.Context, p *recommend.UserProfile) (err error) {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: profile id is required", recommend.ErrInvalidArgument)
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert", "user_profiles", start, err) }()

	prefs, err := encodeList(p.Preferences)
	if err != nil {
		return err
	}

	return withConflictRetry(ctx, "upsert_user_profile", func() error {
		_, execErr := db.conn.ExecContext(ctx, `
			INSERT INTO user_profiles (user_id, age, gender, preferences, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				age = EXCLUDED.age,
				gender = EXCLUDED.gender,
				preferences = EXCLUDED.preferences,
				updated_at = EXCLUDED.updated_at`,
			p.ID, p.Age, p.Gender, prefs, db.now().UTC())
		if execErr != nil {
			return fmt.Errorf("failed to upsert user profile: %w", execErr)
		}
		return nil
	})
}

// encodeList encodes a string list, writing nil as an empty array.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}
