// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/careguide/internal/cache"
	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/metrics"
)

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages that fail after all retries.
	// Empty disables the poison queue; failures are then nacked.
	PoisonQueueTopic string

	// Deduplication of event ids; a zero TTL disables it.
	DeduplicationTTL      time.Duration
	DeduplicationCapacity int
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:          30 * time.Second,
		RetryMaxRetries:       3,
		RetryInitialInterval:  100 * time.Millisecond,
		RetryMaxInterval:      5 * time.Second,
		RetryMultiplier:       2.0,
		PoisonQueueTopic:      "careguide.poison",
		DeduplicationTTL:      5 * time.Minute,
		DeduplicationCapacity: 10000,
	}
}

// RouterConfigFrom maps the NATS section onto router settings.
func RouterConfigFrom(cfg *config.NATSConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.CloseTimeout = cfg.CloseTimeout
	rc.RetryMaxRetries = cfg.RouterRetryCount
	rc.RetryInitialInterval = cfg.RouterRetryInterval
	rc.PoisonQueueTopic = cfg.PoisonTopic
	rc.DeduplicationTTL = cfg.RouterDedupTTL
	return rc
}

// Router wraps the Watermill Router with pre-configured middleware.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	handlers map[string]*message.Handler
	dedup    *Deduplicator
	running  atomic.Bool
}

// Deduplicator drops messages whose event id was already handled.
//
// An id is claimed before its handler runs and released if the handler
// fails, so failed messages stay eligible for redelivery.
type Deduplicator struct {
	seen *cache.LRU[time.Time]
}

// NewDeduplicator creates a deduplicator remembering up to capacity ids
// for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{seen: cache.NewLRU[time.Time](capacity, ttl)}
}

// Middleware implements message.HandlerMiddleware.
func (d *Deduplicator) Middleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		if d.seen.IsDuplicate(msg.UUID, time.Now()) {
			metrics.RecordEventConsumed(message.SubscribeTopicFromCtx(msg.Context()), "duplicate")
			return nil, nil
		}

		out, err := h(msg)
		if err != nil {
			d.seen.Remove(msg.UUID)
		}
		return out, err
	}
}

// Len returns the number of remembered ids.
func (d *Deduplicator) Len() int {
	return d.seen.Len()
}

// NewRouter creates a Watermill Router. Middleware, outermost first:
// poison queue, deduplication, retry, panic recovery.
func NewRouter(cfg *RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   *cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	if cfg.DeduplicationTTL > 0 {
		r.dedup = NewDeduplicator(cfg.DeduplicationCapacity, cfg.DeduplicationTTL)
		wmRouter.AddMiddleware(r.dedup.Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware, middleware.Recoverer)

	return r, nil
}

// AddConsumerHandler registers a handler that doesn't produce output messages.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Handlers returns the names of the registered handlers.
func (r *Router) Handlers() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router.
// Waits for in-flight messages to complete up to CloseTimeout.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning returns whether the router is currently processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}
