// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package upstream_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/careguide/internal/content"
	"github.com/tomtom215/careguide/internal/recommend"
	"github.com/tomtom215/careguide/internal/upstream"
)

// stubServices answers profile, progress, interaction and telemetry calls.
type stubServices struct {
	profileErr  error
	profileHits atomic.Int32
	completions atomic.Int32
}

func (s *stubServices) GetUserProfile(_ context.Context, userID string) (*recommend.UserProfile, error) {
	s.profileHits.Add(1)
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return &recommend.UserProfile{ID: userID, Age: 55}, nil
}

func (s *stubServices) GetProgramProgress(_ context.Context, userID, programID string) (*recommend.ProgramProgress, error) {
	return &recommend.ProgramProgress{UserID: userID, ProgramID: programID, CurrentStage: 2}, nil
}

func (s *stubServices) GetContentInteractions(_ context.Context, _, _ string) (map[string]recommend.ContentInteraction, error) {
	return map[string]recommend.ContentInteraction{"understanding-glp1": {ContentID: "understanding-glp1"}}, nil
}

func (s *stubServices) RecordContentCompletion(_ context.Context, _, _, _ string) error {
	s.completions.Add(1)
	return nil
}

func newGuard(s *stubServices) *upstream.Guard {
	catalog := content.Default()
	return upstream.NewGuard(recommend.Dependencies{
		Profiles:     s,
		Progress:     s,
		Interactions: s,
		Content:      catalog,
		Rules:        catalog,
		Telemetry:    s,
		Defaults:     catalog,
	}, upstream.DefaultSettings())
}

func TestGuard_PassesResultsThrough(t *testing.T) {
	t.Parallel()

	s := &stubServices{}
	deps := newGuard(s).Dependencies()
	ctx := context.Background()

	profile, err := deps.Profiles.GetUserProfile(ctx, "u1")
	if err != nil || profile.Age != 55 {
		t.Fatalf("GetUserProfile = %+v, %v", profile, err)
	}

	progress, err := deps.Progress.GetProgramProgress(ctx, "u1", content.WeightLossProgramID)
	if err != nil || progress.CurrentStage != 2 {
		t.Fatalf("GetProgramProgress = %+v, %v", progress, err)
	}

	interactions, err := deps.Interactions.GetContentInteractions(ctx, "u1", content.WeightLossProgramID)
	if err != nil || len(interactions) != 1 {
		t.Fatalf("GetContentInteractions = %v, %v", interactions, err)
	}

	stage, err := deps.Content.GetStageContent(ctx, content.WeightLossProgramID, 1)
	if err != nil || stage.Index != 1 {
		t.Fatalf("GetStageContent = %+v, %v", stage, err)
	}

	placements, err := deps.Content.LookupContent(ctx, content.WeightLossProgramID, []string{"quick-wins", "nope"})
	if err != nil {
		t.Fatalf("LookupContent error = %v", err)
	}
	if _, ok := placements["quick-wins"]; !ok || len(placements) != 1 {
		t.Errorf("LookupContent = %v, want only quick-wins", placements)
	}

	rules, err := deps.Rules.GetPersonalizationRules(ctx, content.WeightLossProgramID)
	if err != nil || len(rules) == 0 {
		t.Fatalf("GetPersonalizationRules = %v, %v", rules, err)
	}

	if err := deps.Telemetry.RecordContentCompletion(ctx, "u1", content.WeightLossProgramID, "quick-wins"); err != nil {
		t.Fatalf("RecordContentCompletion error = %v", err)
	}
	if got := s.completions.Load(); got != 1 {
		t.Errorf("completions = %d, want 1", got)
	}

	if deps.Defaults == nil {
		t.Error("Defaults not passed through")
	}
}

func TestGuard_NotFoundPassesThrough(t *testing.T) {
	t.Parallel()

	deps := newGuard(&stubServices{}).Dependencies()
	_, err := deps.Content.GetStageContent(context.Background(), "unknown-program", 1)
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGuard_BreakersAreIndependent(t *testing.T) {
	t.Parallel()

	s := &stubServices{profileErr: errors.New("profile service down")}
	g := newGuard(s)
	deps := g.Dependencies()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, _ = deps.Profiles.GetUserProfile(ctx, "u1")
	}

	states := g.States()
	if got := states[recommend.CollaboratorProfile]; got != "open" {
		t.Errorf("profile breaker = %q, want open", got)
	}
	for _, name := range []string{
		recommend.CollaboratorProgress,
		recommend.CollaboratorInteractions,
		recommend.CollaboratorStage,
		recommend.CollaboratorRules,
		upstream.CollaboratorTelemetry,
	} {
		if got := states[name]; got != "closed" {
			t.Errorf("%s breaker = %q, want closed", name, got)
		}
	}

	hits := s.profileHits.Load()
	_, err := deps.Profiles.GetUserProfile(ctx, "u1")
	if err == nil {
		t.Error("expected rejection from open breaker")
	}
	if s.profileHits.Load() != hits {
		t.Error("open breaker still called the profile service")
	}

	if _, err := deps.Progress.GetProgramProgress(ctx, "u1", content.WeightLossProgramID); err != nil {
		t.Errorf("progress call failed while only profile is open: %v", err)
	}
}
