// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/careguide/internal/cache"
	"github.com/tomtom215/careguide/internal/content"
	"github.com/tomtom215/careguide/internal/recommend"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// mockCollaborators implements every collaborator contract on top of the
// built-in catalog, with per-collaborator failure injection and call counters.
type mockCollaborators struct {
	catalog *content.Catalog

	mu           sync.Mutex
	profile      *recommend.UserProfile
	progress     *recommend.ProgramProgress
	interactions map[string]recommend.ContentInteraction
	rules        []recommend.PersonalizationRule

	profileErr      error
	progressErr     error
	interactionsErr error
	stageErr        error
	rulesErr        error
	lookupErr       error
	telemetryErr    error
	profilePanic    bool

	// gate, when set, blocks profile fetches until closed. started is
	// closed on the first blocked fetch.
	gate        chan struct{}
	started     chan struct{}
	startedOnce sync.Once

	profileCalls     atomic.Int32
	progressCalls    atomic.Int32
	interactionCalls atomic.Int32
	stageCalls       atomic.Int32
	ruleCalls        atomic.Int32
	lookupCalls      atomic.Int32
	telemetryCalls   atomic.Int32
}

func newMockCollaborators(age, stage int, completion float64) *mockCollaborators {
	return &mockCollaborators{
		catalog:      content.Default(),
		profile:      &recommend.UserProfile{ID: "user-1", Age: age, Gender: "female"},
		progress:     &recommend.ProgramProgress{UserID: "user-1", ProgramID: content.WeightLossProgramID, CurrentStage: stage, CompletionPercentage: completion},
		interactions: map[string]recommend.ContentInteraction{},
	}
}

func (m *mockCollaborators) GetUserProfile(ctx context.Context, userID string) (*recommend.UserProfile, error) {
	m.profileCalls.Add(1)
	if m.gate != nil {
		m.startedOnce.Do(func() { close(m.started) })
		<-m.gate
	}
	if m.profilePanic {
		panic("profile service exploded")
	}
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	p := *m.profile
	p.ID = userID
	return &p, nil
}

func (m *mockCollaborators) GetProgramProgress(ctx context.Context, userID, programID string) (*recommend.ProgramProgress, error) {
	m.progressCalls.Add(1)
	if m.progressErr != nil {
		return nil, m.progressErr
	}
	p := *m.progress
	p.UserID, p.ProgramID = userID, programID
	return &p, nil
}

func (m *mockCollaborators) GetContentInteractions(ctx context.Context, userID, programID string) (map[string]recommend.ContentInteraction, error) {
	m.interactionCalls.Add(1)
	if m.interactionsErr != nil {
		return nil, m.interactionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]recommend.ContentInteraction, len(m.interactions))
	for k, v := range m.interactions {
		out[k] = v
	}
	return out, nil
}

func (m *mockCollaborators) GetStageContent(ctx context.Context, programID string, stageIndex int) (*recommend.Stage, error) {
	m.stageCalls.Add(1)
	if m.stageErr != nil {
		return nil, m.stageErr
	}
	return m.catalog.GetStageContent(ctx, programID, stageIndex)
}

func (m *mockCollaborators) LookupContent(ctx context.Context, programID string, ids []string) (map[string]recommend.ContentPlacement, error) {
	m.lookupCalls.Add(1)
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.catalog.LookupContent(ctx, programID, ids)
}

func (m *mockCollaborators) GetPersonalizationRules(ctx context.Context, programID string) ([]recommend.PersonalizationRule, error) {
	m.ruleCalls.Add(1)
	if m.rulesErr != nil {
		return nil, m.rulesErr
	}
	return m.rules, nil
}

func (m *mockCollaborators) RecordContentCompletion(ctx context.Context, userID, programID, contentID string) error {
	m.telemetryCalls.Add(1)
	if m.telemetryErr != nil {
		return m.telemetryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	in := m.interactions[contentID]
	in.UserID, in.ProgramID, in.ContentID = userID, programID, contentID
	in.Completed = true
	m.interactions[contentID] = in
	return nil
}

func (m *mockCollaborators) setGate() {
	m.gate = make(chan struct{})
	m.started = make(chan struct{})
}

// fetchCounts returns the calls of the five read collaborators.
func (m *mockCollaborators) fetchCounts() [5]int32 {
	return [5]int32{
		m.profileCalls.Load(),
		m.progressCalls.Load(),
		m.interactionCalls.Load(),
		m.stageCalls.Load(),
		m.ruleCalls.Load(),
	}
}

func (m *mockCollaborators) deps() recommend.Dependencies {
	return recommend.Dependencies{
		Profiles:     m,
		Progress:     m,
		Interactions: m,
		Content:      m,
		Rules:        m,
		Telemetry:    m,
		Defaults:     m.catalog,
	}
}

// mockNotifier records completion notifications.
type mockNotifier struct {
	calls atomic.Int32
	err   error
}

func (n *mockNotifier) ContentCompleted(ctx context.Context, userID, programID, contentID string) error {
	n.calls.Add(1)
	return n.err
}

func newTestEngine(t *testing.T, m *mockCollaborators, store cache.Store) *recommend.Engine {
	t.Helper()
	e, err := recommend.NewEngine(recommend.DefaultConfig(), m.deps(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetClock(func() time.Time { return testNow })
	return e
}

func catalogRule(t *testing.T, id string) recommend.PersonalizationRule {
	t.Helper()
	p, _ := content.Default().Program(content.WeightLossProgramID)
	for _, r := range p.Rules {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("rule %q not in catalog", id)
	return recommend.PersonalizationRule{}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
