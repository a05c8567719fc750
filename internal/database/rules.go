// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/careguide/internal/recommend"
)

// GetPersonalizationRules implements recommend.RuleRepository. Rules come
// back in authored order; unknown programs have none.
//
// A stored condition that no longer parses still decodes. The engine
// reports it when the rule is evaluated.
func (db *DB) GetPersonalizationRules(ctx context.Context, programID string) (rules []recommend.PersonalizationRule, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "personalization_rules", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT rule_id, name, condition, adjustments
		FROM personalization_rules
		WHERE program_id = ?
		ORDER BY position`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query personalization rules: %w", err)
	}
	defer closeWithLog(rows, "rule rows")

	for rows.Next() {
		var (
			r                     recommend.PersonalizationRule
			condition, adjustment string
		)
		if err := rows.Scan(&r.ID, &r.Name, &condition, &adjustment); err != nil {
			return nil, fmt.Errorf("failed to scan personalization rule: %w", err)
		}
		if err := json.Unmarshal([]byte(condition), &r.Condition); err != nil {
			return nil, fmt.Errorf("failed to decode condition of rule %q: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(adjustment), &r.Adjustments); err != nil {
			return nil, fmt.Errorf("failed to decode adjustments of rule %q: %w", r.ID, err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personalization rules: %w", err)
	}
	return rules, nil
}
