// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package upstream protects the recommendation engine's collaborators with
// per-collaborator circuit breakers (sony/gobreaker) and an optional token
// bucket limiter (golang.org/x/time/rate).
//
// A tripped breaker fails reads immediately instead of waiting for a slow
// or unavailable store, which the engine turns into its static fallback.
// Not-found results and caller cancellations do not count as failures.
//
// Usage:
//
//	guard := upstream.NewGuard(deps, upstream.DefaultSettings())
//	engine, err := recommend.NewEngine(cfg, guard.Dependencies(), store, logger)
package upstream
