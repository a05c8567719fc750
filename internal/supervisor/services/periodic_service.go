// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/careguide/internal/logging"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval until its context ends.
// A failing task is logged and retried on the next tick.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task

	runs     atomic.Int64
	failures atomic.Int64
}

// NewPeriodicService creates a periodic service. A non-positive interval
// defaults to one minute.
func NewPeriodicService(name string, interval time.Duration, task Task) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PeriodicService) runOnce(ctx context.Context) {
	start := time.Now()
	s.runs.Add(1)
	if err := s.task(ctx); err != nil {
		s.failures.Add(1)
		logging.Warn().Err(err).Str("service", s.name).Msg("Periodic task failed")
		return
	}
	logging.Debug().Str("service", s.name).Dur("duration", time.Since(start)).Msg("Periodic task completed")
}

// Runs returns how many times the task ran.
func (s *PeriodicService) Runs() int64 {
	return s.runs.Load()
}

// Failures returns how many runs returned an error.
func (s *PeriodicService) Failures() int64 {
	return s.failures.Load()
}

// String implements fmt.Stringer for suture event logging.
func (s *PeriodicService) String() string {
	return s.name
}
