// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package recommend selects, adjusts, scores and ranks the educational
// content shown to a patient in a multi-stage care program.
//
// # Pipeline
//
// One personalization cycle for a (user, program) pair runs:
//
//  1. Fetch: profile, progress, interactions and rules are read
//     concurrently; the stage content is read once progress is known.
//  2. Evaluate: each rule condition is checked against the profile and
//     progress (Evaluator). Rules that fail to evaluate are skipped.
//  3. Adjust: matched rules add content, rewrite descriptions from
//     variants and promote content, in rule order (WorkingSet.Apply).
//  4. Score: every item gets six sub-scores combined with fixed weights
//     (Scorer).
//  5. Select: duplicates are removed, completed items optionally dropped,
//     sections ordered and capped (Select).
//  6. Format: the result is mapped to the display contract (Format).
//
// # Caching
//
// Engine caches one result per (user, program) in a cache.Store. Entries
// carry a fingerprint of the request options. Completions and invalidation
// events mark the entry stale, and while a computation for the key is in
// flight they also bump its generation, so a result computed before an
// invalidation is never cached, even when its computation finishes later.
// Generations exist only for keys with a computation in flight, so engine
// state stays bounded by concurrency rather than by the number of users.
// Concurrent requests for the same key share one computation.
//
// # Fallback
//
// GetPersonalizedContent never returns an error. When a collaborator read
// fails, content lookup fails, or the pipeline panics, the program's static
// default stage from the DefaultContentProvider is returned with Fallback
// set. Fallback results are not cached.
//
// # Match Modes
//
// A condition with several clauses holds when any clause holds (MatchAny,
// the default) or only when all hold (MatchAll). The mode is part of Config.
//
// Example:
//
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Profiles:     db,
//	    Progress:     db,
//	    Interactions: db,
//	    Content:      db,
//	    Rules:        db,
//	    Telemetry:    db,
//	    Defaults:     content.Default(),
//	}, store, logger)
//	result := engine.GetPersonalizedContent(ctx, "user-1", "weightLoss", recommend.Options{})
package recommend
