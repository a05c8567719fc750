// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/database"
	"github.com/tomtom215/careguide/internal/eventprocessor"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/recommend"
)

var errTransportUnhealthy = errors.New("event transport unhealthy")

// eventComponents holds the transport and the breaker-guarded publisher.
type eventComponents struct {
	transport *eventprocessor.Transport
	publisher *eventprocessor.Publisher
	logger    watermill.LoggerAdapter
}

// initTransport starts the configured transport and the outbound publisher.
func initTransport(ctx context.Context, cfg *config.Config) (*eventComponents, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger("watermill"))

	transport, err := eventprocessor.NewTransport(ctx, &cfg.NATS, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize event transport: %w", err)
	}

	breaker := eventprocessor.NewCircuitBreaker(eventprocessor.DefaultCircuitBreakerConfig())
	publisher, err := eventprocessor.NewPublisher(transport.Publisher, breaker)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.NATS.CloseTimeout)
		defer cancel()
		return nil, errors.Join(err, transport.Close(closeCtx))
	}

	logging.Info().Str("backend", transport.Backend()).Msg("Event transport initialized")
	return &eventComponents{transport: transport, publisher: publisher, logger: logger}, nil
}

// healthCheck adapts Transport.Healthy to a readiness check.
func (e *eventComponents) healthCheck(ctx context.Context) error {
	if !e.transport.Healthy(ctx) {
		return errTransportUnhealthy
	}
	return nil
}

// Close stops publishing, then releases the transport.
func (e *eventComponents) Close(ctx context.Context) error {
	return errors.Join(e.publisher.Close(), e.transport.Close(ctx))
}

// initEventRouter registers the inbound handlers that keep the result cache
// coherent with progress, views and catalog edits.
func initEventRouter(cfg *config.Config, events *eventComponents, db *database.DB, engine *recommend.Engine) (*eventprocessor.Router, error) {
	routerCfg := eventprocessor.RouterConfigFrom(&cfg.NATS)
	router, err := eventprocessor.NewRouter(&routerCfg, events.transport.Publisher, events.logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}

	handlers, err := eventprocessor.NewHandlers(db, engine, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create event handlers: %w", err)
	}
	handlers.Register(router, events.transport.Subscriber)

	logging.Info().Strs("handlers", router.Handlers()).Msg("Event router configured")
	return router, nil
}
