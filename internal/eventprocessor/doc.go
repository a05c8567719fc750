// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package eventprocessor moves domain events between Careguide and the
// systems around it using Watermill.
//
// # Events
//
// Inbound events keep recommendation caches coherent with writes made
// elsewhere:
//
//	careguide.progress.updated   progress upserted, one cache key invalidated
//	careguide.content.viewed     view recorded, one cache key invalidated
//	careguide.content.updated    catalog changed, every key of the program invalidated
//
// Outbound, the Publisher emits careguide.content.completed after each
// successful completion write; it satisfies recommend.CompletionNotifier.
//
// # Transports
//
// With NATS disabled, a Watermill gochannel carries events inside the
// process. With NATS enabled, events travel over JetStream, either to an
// external server or to an embedded nats-server started by NewTransport.
// The stream is created or updated up front by StreamInitializer, so
// subscribers bind to it rather than auto-provisioning.
//
// # Router
//
// Consumers run under a Watermill Router with this middleware, outermost
// first:
//
//  1. PoisonQueue: messages that still fail are parked on the poison topic
//  2. Deduplicator: event ids already handled are acked without work
//  3. Retry: exponential backoff for transient failures
//  4. Recoverer: handler panics become errors
//
// The deduplicator releases an id when its handler fails, so a redelivery
// is processed again instead of being dropped.
//
// Events that do not decode or validate are logged and acked; retrying
// them cannot help.
package eventprocessor
