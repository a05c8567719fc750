// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// mockService counts starts and can fail a number of times before running.
type mockService struct {
	name       string
	startCount atomic.Int32
	failFirst  int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.startCount.Add(1)
	if n <= m.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForStarts(t *testing.T, svc *mockService, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.startCount.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("%s started %d times, want %d", svc.name, svc.startCount.Load(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		for l := Layer(0); l < layerCount; l++ {
			if tree.layers[l] == nil {
				t.Fatalf("%s supervisor should not be nil", l)
			}
		}

		want := DefaultTreeConfig()
		if tree.config != want {
			t.Errorf("config = %+v, want %+v", tree.config, want)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, _ := NewSupervisorTree(testLogger(), TreeConfig{FailureBackoff: time.Second})
		if tree.config.FailureBackoff != time.Second {
			t.Errorf("FailureBackoff = %v, want 1s", tree.config.FailureBackoff)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		tree, err := NewSupervisorTree(nil, TreeConfig{})
		if err != nil || tree.logger == nil {
			t.Fatalf("tree=%v err=%v", tree, err)
		}
	})

	t.Run("rejects negative policy", func(t *testing.T) {
		if _, err := NewSupervisorTree(testLogger(), TreeConfig{FailureBackoff: -time.Second}); err == nil {
			t.Fatal("expected error for negative backoff")
		}
	})
}

func TestLayer_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerData, "data-layer"},
		{LayerMessaging, "messaging-layer"},
		{LayerAPI, "api-layer"},
		{Layer(7), "layer(7)"},
	}
	for _, tt := range tests {
		if got := tt.layer.String(); got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", int(tt.layer), got, tt.want)
		}
	}
}

func TestSupervisorTree_AddUnknownLayerPanics(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown layer")
		}
	}()
	tree.Add(layerCount, newMockService("orphan"))
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newMockService("cache-maintenance")
	messaging := newMockService("event-router")
	api := newMockService("ops-http")
	tree.Add(LayerData, data)
	tree.Add(LayerMessaging, messaging)
	tree.Add(LayerAPI, api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitForStarts(t, data, 1)
	waitForStarts(t, messaging, 1)
	waitForStarts(t, api, 1)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped services: %v (err %v)", report, err)
	}
}

func TestSupervisorTree_RestartIsolatedToLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newMockService("event-router")
	flaky.failFirst = 2
	api := newMockService("ops-http")
	tree.Add(LayerMessaging, flaky)
	tree.Add(LayerAPI, api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitForStarts(t, flaky, 3)
	waitForStarts(t, api, 1)

	if got := api.startCount.Load(); got != 1 {
		t.Errorf("api service restarted %d times, want a single start", got)
	}

	cancel()
	<-errCh
}
