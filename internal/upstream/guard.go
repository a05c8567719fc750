// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package upstream

import (
	"context"

	"github.com/tomtom215/careguide/internal/recommend"
)

// CollaboratorTelemetry names the completion writer's breaker.
const CollaboratorTelemetry = "telemetry"

// Guard wraps every collaborator of an engine in its own breaker.
type Guard struct {
	deps     recommend.Dependencies
	breakers []*Breaker
}

// NewGuard wraps the reading and writing collaborators of deps. The
// default content provider and the notifier are passed through unchanged:
// the former is in-process and the latter already tolerates failure.
//
//nolint:gocritic // Dependencies and Settings passed by value for immutability
func NewGuard(deps recommend.Dependencies, s Settings) *Guard {
	g := &Guard{}
	newBreaker := func(name string) *Breaker {
		b := NewBreaker(name, s)
		g.breakers = append(g.breakers, b)
		return b
	}

	contentBreaker := newBreaker(recommend.CollaboratorStage)
	g.deps = recommend.Dependencies{
		Profiles:     &profiles{inner: deps.Profiles, b: newBreaker(recommend.CollaboratorProfile)},
		Progress:     &progress{inner: deps.Progress, b: newBreaker(recommend.CollaboratorProgress)},
		Interactions: &interactions{inner: deps.Interactions, b: newBreaker(recommend.CollaboratorInteractions)},
		Content:      &contentRepo{inner: deps.Content, b: contentBreaker},
		Rules:        &rules{inner: deps.Rules, b: newBreaker(recommend.CollaboratorRules)},
		Telemetry:    &telemetry{inner: deps.Telemetry, b: newBreaker(CollaboratorTelemetry)},
		Defaults:     deps.Defaults,
		Notifier:     deps.Notifier,
	}
	return g
}

// Dependencies returns the guarded collaborators.
func (g *Guard) Dependencies() recommend.Dependencies {
	return g.deps
}

// States reports the breaker state of every collaborator.
func (g *Guard) States() map[string]string {
	out := make(map[string]string, len(g.breakers))
	for _, b := range g.breakers {
		out[b.Name()] = b.State()
	}
	return out
}

type profiles struct {
	inner recommend.ProfileService
	b     *Breaker
}

func (p *profiles) GetUserProfile(ctx context.Context, userID string) (*recommend.UserProfile, error) {
	return castResult[*recommend.UserProfile](p.b.execute(ctx, func() (interface{}, error) {
		return p.inner.GetUserProfile(ctx, userID)
	}))
}

type progress struct {
	inner recommend.ProgressService
	b     *Breaker
}

func (p *progress) GetProgramProgress(ctx context.Context, userID, programID string) (*recommend.ProgramProgress, error) {
	return castResult[*recommend.ProgramProgress](p.b.execute(ctx, func() (interface{}, error) {
		return p.inner.GetProgramProgress(ctx, userID, programID)
	}))
}

type interactions struct {
	inner recommend.InteractionService
	b     *Breaker
}

func (i *interactions) GetContentInteractions(ctx context.Context, userID, programID string) (map[string]recommend.ContentInteraction, error) {
	return castResult[map[string]recommend.ContentInteraction](i.b.execute(ctx, func() (interface{}, error) {
		return i.inner.GetContentInteractions(ctx, userID, programID)
	}))
}

// contentRepo shares one breaker between stage reads and lookups; both hit
// the same store.
type contentRepo struct {
	inner recommend.ContentRepository
	b     *Breaker
}

func (c *contentRepo) GetStageContent(ctx context.Context, programID string, stageIndex int) (*recommend.Stage, error) {
	return castResult[*recommend.Stage](c.b.execute(ctx, func() (interface{}, error) {
		return c.inner.GetStageContent(ctx, programID, stageIndex)
	}))
}

func (c *contentRepo) LookupContent(ctx context.Context, programID string, ids []string) (map[string]recommend.ContentPlacement, error) {
	return castResult[map[string]recommend.ContentPlacement](c.b.execute(ctx, func() (interface{}, error) {
		return c.inner.LookupContent(ctx, programID, ids)
	}))
}

type rules struct {
	inner recommend.RuleRepository
	b     *Breaker
}

func (r *rules) GetPersonalizationRules(ctx context.Context, programID string) ([]recommend.PersonalizationRule, error) {
	return castResult[[]recommend.PersonalizationRule](r.b.execute(ctx, func() (interface{}, error) {
		return r.inner.GetPersonalizationRules(ctx, programID)
	}))
}

type telemetry struct {
	inner recommend.TelemetryWriter
	b     *Breaker
}

func (t *telemetry) RecordContentCompletion(ctx context.Context, userID, programID, contentID string) error {
	_, err := t.b.execute(ctx, func() (interface{}, error) {
		return nil, t.inner.RecordContentCompletion(ctx, userID, programID, contentID)
	})
	return err
}
