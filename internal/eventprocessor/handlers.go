// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/metrics"
	"github.com/tomtom215/careguide/internal/recommend"
)

// ProgressStore persists the state inbound events carry.
type ProgressStore interface {
	UpsertProgramProgress(ctx context.Context, p *recommend.ProgramProgress) error
	RecordContentView(ctx context.Context, userID, programID, contentID string, timeSpent time.Duration) error
}

// CacheInvalidator drops cached recommendations.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID, programID string)
	InvalidateProgram(ctx context.Context, programID string)
}

// Handlers applies inbound events to the store and the recommendation cache.
type Handlers struct {
	store  ProgressStore
	cache  CacheInvalidator
	logger zerolog.Logger
}

// NewHandlers creates the inbound event handlers.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandlers(store ProgressStore, cache CacheInvalidator, logger zerolog.Logger) (*Handlers, error) {
	if store == nil || cache == nil {
		return nil, fmt.Errorf("%w: store and cache invalidator are required", ErrInvalidConfig)
	}
	return &Handlers{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "event-handlers").Logger(),
	}, nil
}

// Register adds one consumer per inbound topic to the router.
func (h *Handlers) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("progress-updated", TopicFor(TypeProgressUpdated), sub, h.handle(TypeProgressUpdated, h.progressUpdated))
	r.AddConsumerHandler("content-viewed", TopicFor(TypeContentViewed), sub, h.handle(TypeContentViewed, h.contentViewed))
	r.AddConsumerHandler("content-updated", TopicFor(TypeContentUpdated), sub, h.handle(TypeContentUpdated, h.contentUpdated))
}

// handle decodes a message and runs fn. Invalid events are acked: no
// retry can fix them.
func (h *Handlers) handle(eventType string, fn func(context.Context, *Event) error) message.NoPublishHandlerFunc {
	topic := TopicFor(eventType)

	return func(msg *message.Message) error {
		event, err := DeserializeEvent(msg.Payload)
		if err == nil && event.Type != eventType {
			err = fmt.Errorf("%w: %s event on %s", ErrInvalidEvent, event.Type, topic)
		}
		if err != nil {
			h.logger.Warn().Err(err).
				Str("topic", topic).
				Str("message_uuid", msg.UUID).
				Strs("fields", InvalidFields(err)).
				Msg("Dropping invalid event")
			metrics.RecordEventConsumed(topic, "invalid")
			return nil
		}

		ctx := msg.Context()
		if event.CorrelationID != "" {
			ctx = logging.ContextWithCorrelationID(ctx, event.CorrelationID)
		}

		if err := fn(ctx, event); err != nil {
			if isPermanent(err) {
				h.logger.Warn().Err(err).Str("topic", topic).Str("event_id", event.EventID).Msg("Dropping event rejected by the store")
				metrics.RecordEventConsumed(topic, "invalid")
				return nil
			}
			metrics.RecordEventConsumed(topic, "failed")
			return fmt.Errorf("handle %s %s: %w", event.Type, event.EventID, err)
		}

		metrics.RecordEventConsumed(topic, "processed")
		h.logger.Debug().
			Str("event_id", event.EventID).
			Str("type", event.Type).
			Str("user_id", event.UserID).
			Str("program_id", event.ProgramID).
			Msg("Event processed")
		return nil
	}
}

func (h *Handlers) progressUpdated(ctx context.Context, e *Event) error {
	err := h.store.UpsertProgramProgress(ctx, &recommend.ProgramProgress{
		UserID:               e.UserID,
		ProgramID:            e.ProgramID,
		CurrentStage:         e.CurrentStage,
		CompletionPercentage: e.CompletionPercentage,
	})
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	h.cache.Invalidate(ctx, e.UserID, e.ProgramID)
	return nil
}

func (h *Handlers) contentViewed(ctx context.Context, e *Event) error {
	err := h.store.RecordContentView(ctx, e.UserID, e.ProgramID, e.ContentID, e.TimeSpent())
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	h.cache.Invalidate(ctx, e.UserID, e.ProgramID)
	return nil
}

func (h *Handlers) contentUpdated(ctx context.Context, e *Event) error {
	h.cache.InvalidateProgram(ctx, e.ProgramID)
	return nil
}

// isPermanent reports whether err will fail again on redelivery.
func isPermanent(err error) bool {
	return errors.Is(err, ErrInvalidEvent) || errors.Is(err, recommend.ErrInvalidArgument)
}
