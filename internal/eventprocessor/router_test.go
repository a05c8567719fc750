// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/recommend"
)

// mockStore records writes and can be told to fail.
type mockStore struct {
	mu        sync.Mutex
	progress  []recommend.ProgramProgress
	views     []string
	failTimes atomic.Int32
	err       error

	upsertCalls atomic.Int32
	viewCalls   atomic.Int32
}

func (m *mockStore) fail() error {
	if m.err != nil {
		return m.err
	}
	if m.failTimes.Load() > 0 {
		m.failTimes.Add(-1)
		return errors.New("transient store failure")
	}
	return nil
}

func (m *mockStore) UpsertProgramProgress(_ context.Context, p *recommend.ProgramProgress) error {
	m.upsertCalls.Add(1)
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, *p)
	return nil
}

func (m *mockStore) RecordContentView(_ context.Context, userID, programID, contentID string, _ time.Duration) error {
	m.viewCalls.Add(1)
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, userID+"/"+programID+"/"+contentID)
	return nil
}

// mockInvalidator counts invalidations.
type mockInvalidator struct {
	keys     atomic.Int32
	programs atomic.Int32
	lastKey  atomic.Value
}

func (m *mockInvalidator) Invalidate(_ context.Context, userID, programID string) {
	m.lastKey.Store(userID + ":" + programID)
	m.keys.Add(1)
}

func (m *mockInvalidator) InvalidateProgram(_ context.Context, _ string) {
	m.programs.Add(1)
}

type pipeline struct {
	transport *Transport
	publisher *Publisher
	router    *Router
	store     *mockStore
	cache     *mockInvalidator
}

// startPipeline wires handlers over an in-process transport and runs the
// router until the test ends.
func startPipeline(t *testing.T, rc RouterConfig, store *mockStore) *pipeline {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	transport, err := NewTransport(ctx, &config.NATSConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	pub, err := NewPublisher(transport.Publisher, nil)
	if err != nil {
		t.Fatal(err)
	}
	router, err := NewRouter(&rc, transport.Publisher, nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	inv := &mockInvalidator{}
	handlers, err := NewHandlers(store, inv, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	handlers.Register(router, transport.Subscriber)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = router.Run(ctx)
	}()
	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		_ = router.Close()
		<-done
		_ = transport.Close(context.Background())
	})

	return &pipeline{transport: transport, publisher: pub, router: router, store: store, cache: inv}
}

func fastRouterConfig() RouterConfig {
	rc := DefaultRouterConfig()
	rc.CloseTimeout = time.Second
	rc.RetryMaxRetries = 2
	rc.RetryInitialInterval = time.Millisecond
	rc.RetryMaxInterval = 5 * time.Millisecond
	return rc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRouter_ProgressUpdated(t *testing.T) {
	t.Parallel()

	p := startPipeline(t, fastRouterConfig(), &mockStore{})

	event := NewProgressUpdated("user-1", "weightloss", 3, 55)
	if err := p.publisher.PublishEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	waitFor(t, "invalidation", func() bool { return p.cache.keys.Load() == 1 })

	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if len(p.store.progress) != 1 {
		t.Fatalf("progress writes = %d, want 1", len(p.store.progress))
	}
	got := p.store.progress[0]
	if got.UserID != "user-1" || got.ProgramID != "weightloss" || got.CurrentStage != 3 || got.CompletionPercentage != 55 {
		t.Errorf("progress = %+v", got)
	}
	if key := p.cache.lastKey.Load(); key != "user-1:weightloss" {
		t.Errorf("invalidated key = %v", key)
	}
}

func TestRouter_ContentViewedAndUpdated(t *testing.T) {
	t.Parallel()

	p := startPipeline(t, fastRouterConfig(), &mockStore{})
	ctx := context.Background()

	if err := p.publisher.PublishEvent(ctx, NewContentViewed("user-2", "weightloss", "meal-prep", time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := p.publisher.PublishEvent(ctx, NewContentUpdated("weightloss")); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "view invalidation", func() bool { return p.cache.keys.Load() == 1 })
	waitFor(t, "program invalidation", func() bool { return p.cache.programs.Load() == 1 })

	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if len(p.store.views) != 1 || p.store.views[0] != "user-2/weightloss/meal-prep" {
		t.Errorf("views = %v", p.store.views)
	}
}

func TestRouter_DuplicateEventProcessedOnce(t *testing.T) {
	t.Parallel()

	p := startPipeline(t, fastRouterConfig(), &mockStore{})
	ctx := context.Background()

	event := NewContentViewed("user-3", "weightloss", "meal-prep", time.Minute)
	for i := 0; i < 3; i++ {
		if err := p.publisher.PublishEvent(ctx, event); err != nil {
			t.Fatal(err)
		}
	}
	// A distinct event after the duplicates marks the end of the batch.
	if err := p.publisher.PublishEvent(ctx, NewContentViewed("user-3", "weightloss", "walking", time.Minute)); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "both distinct events", func() bool { return p.cache.keys.Load() == 2 })
	time.Sleep(50 * time.Millisecond)

	if calls := p.store.viewCalls.Load(); calls != 2 {
		t.Errorf("RecordContentView calls = %d, want 2", calls)
	}
}

func TestRouter_RetriesTransientFailure(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	store.failTimes.Store(2)
	p := startPipeline(t, fastRouterConfig(), store)

	if err := p.publisher.PublishEvent(context.Background(), NewProgressUpdated("user-4", "weightloss", 1, 0)); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "invalidation after retries", func() bool { return p.cache.keys.Load() == 1 })
	if calls := store.upsertCalls.Load(); calls != 3 {
		t.Errorf("UpsertProgramProgress calls = %d, want 3", calls)
	}
}

func TestRouter_PoisonQueue(t *testing.T) {
	t.Parallel()

	rc := fastRouterConfig()
	rc.PoisonQueueTopic = "careguide.poison.test"
	store := &mockStore{err: errors.New("database unavailable")}
	p := startPipeline(t, rc, store)

	poisoned, err := p.transport.Subscriber.Subscribe(context.Background(), rc.PoisonQueueTopic)
	if err != nil {
		t.Fatal(err)
	}

	event := NewProgressUpdated("user-5", "weightloss", 2, 10)
	if err := p.publisher.PublishEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	var msg *message.Message
	select {
	case msg = <-poisoned:
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("message never reached the poison queue")
	}

	if msg.UUID != event.EventID {
		t.Errorf("poisoned UUID = %q, want %q", msg.UUID, event.EventID)
	}
	if reason := msg.Metadata.Get("reason_poisoned"); reason == "" {
		t.Error("poisoned message should carry a reason")
	}
	if calls := store.upsertCalls.Load(); calls != int32(rc.RetryMaxRetries+1) {
		t.Errorf("UpsertProgramProgress calls = %d, want %d", calls, rc.RetryMaxRetries+1)
	}
	if p.cache.keys.Load() != 0 {
		t.Error("failed event must not invalidate the cache")
	}
}

func TestRouter_InvalidPayloadIsAcked(t *testing.T) {
	t.Parallel()

	p := startPipeline(t, fastRouterConfig(), &mockStore{})
	ctx := context.Background()

	bad := message.NewMessage("not-an-event", []byte(`{"type":"progress.updated"`))
	if err := p.publisher.Publish(ctx, TopicFor(TypeProgressUpdated), bad); err != nil {
		t.Fatal(err)
	}
	// Wrong type on the topic is treated the same way.
	data, _ := SerializeEvent(NewContentUpdated("weightloss"))
	if err := p.publisher.Publish(ctx, TopicFor(TypeProgressUpdated), message.NewMessage("misrouted", data)); err != nil {
		t.Fatal(err)
	}
	if err := p.publisher.PublishEvent(ctx, NewProgressUpdated("user-6", "weightloss", 1, 0)); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "valid event", func() bool { return p.cache.keys.Load() == 1 })
	if calls := p.store.upsertCalls.Load(); calls != 1 {
		t.Errorf("UpsertProgramProgress calls = %d, want 1", calls)
	}
	if p.cache.programs.Load() != 0 {
		t.Error("misrouted content.updated must not be applied")
	}
}

func TestRouter_IsRunning(t *testing.T) {
	t.Parallel()

	p := startPipeline(t, fastRouterConfig(), &mockStore{})
	if !p.router.IsRunning() {
		t.Error("IsRunning() = false after start")
	}
	if got := len(p.router.Handlers()); got != 3 {
		t.Errorf("Handlers() = %d, want 3", got)
	}
}

func TestDeduplicator_ReleasesOnFailure(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(10, time.Minute)
	var calls int
	fail := true
	h := d.Middleware(func(msg *message.Message) ([]*message.Message, error) {
		calls++
		if fail {
			return nil, errors.New("boom")
		}
		return nil, nil
	})

	msg := message.NewMessage("event-1", nil)
	if _, err := h(msg); err == nil {
		t.Fatal("expected handler error")
	}
	if d.Len() != 0 {
		t.Errorf("failed id should be released, Len() = %d", d.Len())
	}

	fail = false
	if _, err := h(msg); err != nil {
		t.Fatalf("redelivery error = %v", err)
	}
	if _, err := h(msg); err != nil {
		t.Fatalf("duplicate error = %v", err)
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestNewHandlers_RequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewHandlers(nil, &mockInvalidator{}, zerolog.Nop()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewHandlers(nil store) error = %v", err)
	}
	if _, err := NewHandlers(&mockStore{}, nil, zerolog.Nop()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewHandlers(nil cache) error = %v", err)
	}
}

func TestRouterConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := &config.NATSConfig{
		CloseTimeout:        10 * time.Second,
		RouterRetryCount:    7,
		RouterRetryInterval: 250 * time.Millisecond,
		PoisonTopic:         "careguide.poison",
		RouterDedupTTL:      time.Minute,
	}
	rc := RouterConfigFrom(cfg)
	if rc.CloseTimeout != 10*time.Second || rc.RetryMaxRetries != 7 || rc.RetryInitialInterval != 250*time.Millisecond {
		t.Errorf("RouterConfigFrom() = %+v", rc)
	}
	if rc.PoisonQueueTopic != "careguide.poison" || rc.DeduplicationTTL != time.Minute {
		t.Errorf("RouterConfigFrom() = %+v", rc)
	}
	if rc.RetryMultiplier != 2.0 || rc.DeduplicationCapacity != 10000 {
		t.Errorf("defaults not kept: %+v", rc)
	}
}
