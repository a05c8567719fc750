// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/careguide/internal/recommend"
	"github.com/tomtom215/careguide/internal/validation"
)

// contentPath holds the path parameters of the content routes.
type contentPath struct {
	UserID    string `json:"userID" validate:"required,max=128,slug"`
	ProgramID string `json:"programID" validate:"required,max=128,slug"`
}

// CacheStatus is the payload of the cache inspection route.
type CacheStatus struct {
	UserID      string               `json:"userId"`
	ProgramID   string               `json:"programId"`
	State       recommend.CacheState `json:"state"`
	Completions *int                 `json:"completions,omitempty"`
}

// ContentPreview returns what the display surface would render for a user.
func (router *Router) ContentPreview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	path, ok := parseContentPath(rw, r)
	if !ok {
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	content := router.deps.Engine.GetPersonalizedContent(r.Context(), path.UserID, path.ProgramID, opts)
	rw.Success(content)
}

// ContentCacheState reports the cache key state and, when available, the
// completion count of a (user, program).
func (router *Router) ContentCacheState(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	path, ok := parseContentPath(rw, r)
	if !ok {
		return
	}

	status := CacheStatus{
		UserID:    path.UserID,
		ProgramID: path.ProgramID,
		State:     router.deps.Engine.CacheState(r.Context(), path.UserID, path.ProgramID),
	}
	if router.deps.Completions != nil {
		count, err := router.deps.Completions.CompletionCount(r.Context(), path.UserID, path.ProgramID)
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		status.Completions = &count
	}
	rw.Success(status)
}

// EngineMetrics returns the engine counter snapshot.
func (router *Router) EngineMetrics(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, router.deps.Engine.GetMetrics())
}

func parseContentPath(rw *ResponseWriter, r *http.Request) (contentPath, bool) {
	path := contentPath{
		UserID:    chi.URLParam(r, "userID"),
		ProgramID: chi.URLParam(r, "programID"),
	}
	if verr := validation.ValidateStruct(&path); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return path, false
	}
	return path, true
}

// parseOptions reads force_refresh, exclude_completed and caps.
func parseOptions(r *http.Request) (recommend.Options, error) {
	var opts recommend.Options
	q := r.URL.Query()

	var err error
	if opts.ForceRefresh, err = parseBool(q.Get("force_refresh")); err != nil {
		return opts, fmt.Errorf("force_refresh: %w", err)
	}
	if opts.ExcludeCompleted, err = parseBool(q.Get("exclude_completed")); err != nil {
		return opts, fmt.Errorf("exclude_completed: %w", err)
	}
	if raw := q.Get("caps"); raw != "" {
		if opts.SectionCaps, err = parseSectionCaps(raw); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// parseSectionCaps parses "recommended=3,quickHelp=2".
func parseSectionCaps(raw string) (map[recommend.Section]int, error) {
	caps := make(map[recommend.Section]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("caps: expected section=limit, got %q", part)
		}
		section := recommend.Section(strings.TrimSpace(name))
		if !section.Valid() {
			return nil, fmt.Errorf("caps: unknown section %q", name)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("caps: %s must be a non-negative integer", section)
		}
		caps[section] = limit
	}
	return caps, nil
}
