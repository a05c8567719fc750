// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrFloat(v float64) *float64 { return &v }

func TestScoringWeights_SumToOne(t *testing.T) {
	t.Parallel()

	if sum := ScoringWeights().Sum(); sum != 1.0 {
		t.Errorf("weights sum = %v, want exactly 1.0", sum)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	profile := &UserProfile{Age: 52, Preferences: []string{"nutrition"}}
	progress := &ProgramProgress{CurrentStage: 2, CompletionPercentage: 20}
	interactions := map[string]ContentInteraction{
		"a": {ContentID: "a", ViewCount: 2, TimeSpentSeconds: 120, LastViewedAt: now.Add(-36 * time.Hour)},
		"b": {ContentID: "b", TimeSpentSeconds: 90, Completed: true},
	}
	catalog := []ContentItem{
		{ID: "a", Tags: []string{"nutrition", "basics"}, StageIndex: 2},
		{ID: "b", Tags: []string{"nutrition"}, StageIndex: 1},
		{ID: "c", Tags: []string{"exercise"}, StageIndex: 3, Relevance: ptrFloat(0.8)},
	}

	scorer := NewScorer(DefaultConfig().Scoring)
	run := func() []ScoredContentItem {
		sc := NewScoringContext(profile, progress, interactions, catalog, now)
		out := make([]ScoredContentItem, len(catalog))
		for i := range catalog {
			item := catalog[i]
			out[i] = scorer.Score(&item, false, sc)
		}
		return out
	}

	first := run()
	for i := 0; i < 20; i++ {
		if got := run(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestScorer_SubScores(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig().Scoring
	scorer := NewScorer(cfg)

	tests := []struct {
		name         string
		item         ContentItem
		resurfaced   bool
		profile      *UserProfile
		progress     *ProgramProgress
		interactions map[string]ContentInteraction
		check        func(t *testing.T, b ScoreBreakdown)
	}{
		{
			name:     "active stage user behind expected completion",
			item:     ContentItem{ID: "x", StageIndex: 2},
			progress: &ProgramProgress{CurrentStage: 2, CompletionPercentage: 25},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Progress, 0.85) {
					t.Errorf("Progress = %v, want 0.85", b.Progress)
				}
			},
		},
		{
			name:     "active stage user ahead",
			item:     ContentItem{ID: "x", StageIndex: 2},
			progress: &ProgramProgress{CurrentStage: 2, CompletionPercentage: 80},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Progress, 0.7) {
					t.Errorf("Progress = %v, want 0.7", b.Progress)
				}
			},
		},
		{
			name:     "other stage decays with distance",
			item:     ContentItem{ID: "x", StageIndex: 4},
			progress: &ProgramProgress{CurrentStage: 2},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Progress, 0.2) {
					t.Errorf("Progress = %v, want 0.2", b.Progress)
				}
			},
		},
		{
			name: "unknown stage is neutral",
			item: ContentItem{ID: "x"},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Progress, 0.5) {
					t.Errorf("Progress = %v, want 0.5", b.Progress)
				}
			},
		},
		{
			name:    "preference overlap share",
			item:    ContentItem{ID: "x", Tags: []string{"Nutrition", "exercise", "age", "nutrition"}},
			profile: &UserProfile{Preferences: []string{"nutrition"}},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Preferences, 1.0/3.0) {
					t.Errorf("Preferences = %v, want 1/3", b.Preferences)
				}
			},
		},
		{
			name: "time spent includes tag neighbours",
			item: ContentItem{ID: "x", Tags: []string{"nutrition"}},
			interactions: map[string]ContentInteraction{
				"x": {TimeSpentSeconds: 60},
				"y": {TimeSpentSeconds: 120},
				"z": {TimeSpentSeconds: 500},
			},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.TimeSpent, 0.3) {
					t.Errorf("TimeSpent = %v, want 0.3", b.TimeSpent)
				}
			},
		},
		{
			name:         "completed item is suppressed",
			item:         ContentItem{ID: "x"},
			interactions: map[string]ContentInteraction{"x": {Completed: true}},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Completion, 0.05) {
					t.Errorf("Completion = %v, want 0.05", b.Completion)
				}
			},
		},
		{
			name:         "resurfaced completed item",
			item:         ContentItem{ID: "x"},
			resurfaced:   true,
			interactions: map[string]ContentInteraction{"x": {Completed: true}},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Completion, 0.5) {
					t.Errorf("Completion = %v, want 0.5", b.Completion)
				}
			},
		},
		{
			name: "unseen item is fresh",
			item: ContentItem{ID: "x"},
			check: func(t *testing.T, b ScoreBreakdown) {
				if b.Recency != 1 || b.Completion != 1 {
					t.Errorf("Recency, Completion = %v, %v, want 1, 1", b.Recency, b.Completion)
				}
			},
		},
		{
			name:         "recency halves after half-life",
			item:         ContentItem{ID: "x"},
			interactions: map[string]ContentInteraction{"x": {ViewCount: 1, LastViewedAt: now.Add(-7 * 24 * time.Hour)}},
			check: func(t *testing.T, b ScoreBreakdown) {
				if !floatEq(b.Recency, 0.25) {
					t.Errorf("Recency = %v, want 0.25", b.Recency)
				}
			},
		},
		{
			name:         "new flag overrides views",
			item:         ContentItem{ID: "x", IsNew: true},
			interactions: map[string]ContentInteraction{"x": {ViewCount: 3, LastViewedAt: now.Add(-30 * 24 * time.Hour)}},
			check: func(t *testing.T, b ScoreBreakdown) {
				if b.Recency != 1 {
					t.Errorf("Recency = %v, want 1", b.Recency)
				}
			},
		},
		{
			name: "relevance clamped",
			item: ContentItem{ID: "x", Relevance: ptrFloat(1.7)},
			check: func(t *testing.T, b ScoreBreakdown) {
				if b.Relevance != 1 {
					t.Errorf("Relevance = %v, want 1", b.Relevance)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog := []ContentItem{
				tt.item,
				{ID: "y", Tags: []string{"nutrition", "basics"}},
				{ID: "z", Tags: []string{"exercise"}},
			}
			sc := NewScoringContext(tt.profile, tt.progress, tt.interactions, catalog, now)
			item := tt.item
			got := scorer.Score(&item, tt.resurfaced, sc)
			tt.check(t, got.Breakdown)
			if got.Score < 0 || got.Score > 1 {
				t.Errorf("Score = %v, want within [0,1]", got.Score)
			}
			if !floatEq(got.Score, ScoringWeights().Total(got.Breakdown)) {
				t.Errorf("Score = %v, want weighted total %v", got.Score, ScoringWeights().Total(got.Breakdown))
			}
		})
	}
}

func TestScorer_UncompletedOutranksCompleted(t *testing.T) {
	t.Parallel()

	now := time.Now()
	interactions := map[string]ContentInteraction{"done": {Completed: true}}
	catalog := []ContentItem{{ID: "done"}, {ID: "open"}}
	sc := NewScoringContext(nil, nil, interactions, catalog, now)
	scorer := NewScorer(DefaultConfig().Scoring)

	done := scorer.Score(&catalog[0], false, sc)
	open := scorer.Score(&catalog[1], false, sc)
	if done.Score >= open.Score {
		t.Errorf("completed score %v >= open score %v", done.Score, open.Score)
	}
}
