// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package services

import (
	"context"
	"errors"
	"fmt"
)

// EventRouter matches the event router lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// ErrRouterStopped is returned when the router stops while its context is
// still live.
var ErrRouterStopped = errors.New("event router stopped unexpectedly")

// EventRouterService runs the event router under supervision.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service. Run returns when ctx ends; the router
// is closed afterwards so in-flight messages drain.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)

	if closeErr := s.router.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close router: %w", closeErr)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ErrRouterStopped
}

// String implements fmt.Stringer for suture event logging.
func (s *EventRouterService) String() string {
	return s.name
}
