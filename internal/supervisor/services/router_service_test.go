// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockRouter blocks in Run until its context ends, or returns runErr at once.
type mockRouter struct {
	runErr     error
	returnNow  bool
	runCount   atomic.Int32
	closeCount atomic.Int32
	started    chan struct{}
}

func newMockRouter() *mockRouter {
	return &mockRouter{started: make(chan struct{}, 8)}
}

func (m *mockRouter) Run(ctx context.Context) error {
	m.runCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.returnNow {
		return m.runErr
	}
	<-ctx.Done()
	return nil
}

func (m *mockRouter) Close() error {
	m.closeCount.Add(1)
	return nil
}

func TestEventRouterService_Interface(t *testing.T) {
	var _ suture.Service = (*EventRouterService)(nil)
}

func TestEventRouterService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("closes router on cancellation", func(t *testing.T) {
		t.Parallel()
		router := newMockRouter()
		svc := NewEventRouterService(router)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-router.started
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if router.closeCount.Load() != 1 {
			t.Errorf("Close calls = %d, want 1", router.closeCount.Load())
		}
	})

	t.Run("router error is returned", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("subscribe failed")
		router := newMockRouter()
		router.returnNow = true
		router.runErr = boom

		err := NewEventRouterService(router).Serve(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped router error, got %v", err)
		}
	})

	t.Run("clean stop with live context is an error", func(t *testing.T) {
		t.Parallel()
		router := newMockRouter()
		router.returnNow = true

		err := NewEventRouterService(router).Serve(context.Background())
		if !errors.Is(err, ErrRouterStopped) {
			t.Errorf("expected ErrRouterStopped, got %v", err)
		}
	})
}

func TestEventRouterService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()

	router := newMockRouter()
	router.returnNow = true
	router.runErr = errors.New("transient")

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewEventRouterService(router))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-router.started:
		case <-time.After(time.Second):
			t.Fatalf("router start %d not observed", i+1)
		}
	}
	cancel()
	<-errCh

	if router.runCount.Load() < 2 {
		t.Errorf("router should be restarted, Run calls = %d", router.runCount.Load())
	}
}

func TestEventRouterService_String(t *testing.T) {
	if got := NewEventRouterService(newMockRouter()).String(); got != "event-router" {
		t.Errorf("String() = %q", got)
	}
}
