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
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/careguide/internal/recommend"
)

// sectionOrderSQL sorts sections into canonical order.
const sectionOrderSQL = `CASE section
	WHEN 'recommended' THEN 1
	WHEN 'weekFocus' THEN 2
	WHEN 'quickHelp' THEN 3
	WHEN 'comingUp' THEN 4
	ELSE 5 END`

const contentItemColumns = `stage_index, section, content_id, title, description, content_type,
	reading_time_minutes, tags, priority, relevance, is_new, variants`

// GetStageContent implements recommend.ContentRepository.
func (db *DB) GetStageContent(ctx context.Context, programID string, stageIndex int) (stage *recommend.Stage, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "content_items", start, err) }()

	st := &recommend.Stage{
		ProgramID: programID,
		Index:     stageIndex,
		Sections:  make(map[recommend.Section][]recommend.ContentItem),
	}
	err = db.conn.QueryRowContext(ctx,
		`SELECT title FROM program_stages WHERE program_id = ? AND stage_index = ?`,
		programID, stageIndex).Scan(&st.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stage %d of program %q: %w", stageIndex, programID, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query stage: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+contentItemColumns+`
		FROM content_items
		WHERE program_id = ? AND stage_index = ?
		ORDER BY `+sectionOrderSQL+`, position`,
		programID, stageIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage content: %w", err)
	}
	defer closeWithLog(rows, "content rows")

	for rows.Next() {
		placement, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		st.Sections[placement.Section] = append(st.Sections[placement.Section], placement.Item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stage content: %w", err)
	}
	return st, nil
}

// LookupContent implements recommend.ContentRepository. An id that
// appears in several stages resolves to its earliest occurrence.
func (db *DB) LookupContent(ctx context.Context, programID string, ids []string) (out map[string]recommend.ContentPlacement, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "content_items", start, err) }()

	exists, err := db.programExists(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("program %q: %w", programID, recommend.ErrNotFound)
	}

	out = make(map[string]recommend.ContentPlacement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, programID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+contentItemColumns+`
		FROM content_items
		WHERE program_id = ? AND content_id IN (`+placeholders+`)
		ORDER BY stage_index, `+sectionOrderSQL+`, position`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up content: %w", err)
	}
	defer closeWithLog(rows, "lookup rows")

	for rows.Next() {
		placement, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		if _, seen := out[placement.Item.ID]; seen {
			continue
		}
		out[placement.Item.ID] = placement
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content lookup: %w", err)
	}
	return out, nil
}

func (db *DB) programExists(ctx context.Context, programID string) (bool, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM programs WHERE program_id = ?`, programID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query program: %w", err)
	}
	return n > 0, nil
}

// ProgramIDs lists the seeded programs.
func (db *DB) ProgramIDs(ctx context.Context) (ids []string, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "programs", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT program_id FROM programs ORDER BY program_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer closeWithLog(rows, "program rows")

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanContentItem(rows *sql.Rows) (recommend.ContentPlacement, error) {
	var (
		p         recommend.ContentPlacement
		section   string
		ctype     string
		tags      string
		variants  string
		priority  sql.NullInt64
		relevance sql.NullFloat64
	)
	item := &p.Item
	if err := rows.Scan(&p.StageIndex, &section, &item.ID, &item.Title, &item.Description, &ctype,
		&item.ReadingTimeMinutes, &tags, &priority, &relevance, &item.IsNew, &variants); err != nil {
		return p, fmt.Errorf("failed to scan content item: %w", err)
	}

	p.Section = recommend.Section(section)
	item.ContentType = recommend.ContentType(ctype)
	item.StageIndex = p.StageIndex
	if priority.Valid {
		v := int(priority.Int64)
		item.Priority = &v
	}
	if relevance.Valid {
		v := relevance.Float64
		item.Relevance = &v
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return p, fmt.Errorf("failed to decode tags of %q: %w", item.ID, err)
	}
	if len(item.Tags) == 0 {
		item.Tags = nil
	}
	if err := json.Unmarshal([]byte(variants), &item.Variants); err != nil {
		return p, fmt.Errorf("failed to decode variants of %q: %w", item.ID, err)
	}
	if len(item.Variants) == 0 {
		item.Variants = nil
	}
	return p, nil
}
