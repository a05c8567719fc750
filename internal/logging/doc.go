// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package logging provides the zerolog-based structured logger shared by
// every Careguide component.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Warn().Str("user_id", userID).Msg("Fallback content served")
//
// # Components
//
// Long-lived components take a zerolog.Logger at construction; main passes
// Logger() so they share the process configuration:
//
//	engine, err := recommend.NewEngine(cfg, deps, store, logging.Logger())
//
// Libraries that log through log/slog (suture, watermill) are bridged with
// NewSlogLogger so all output shares one format and level.
//
// # Correlation
//
// ContextWithNewCorrelationID attaches a short correlation ID to a context;
// Ctx and CtxWith add it (and any request ID) to every event.
package logging
