// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package metrics defines the Prometheus instrumentation of Careguide.

Metrics are registered with the default registry through promauto and are
exposed by the ops HTTP server at /metrics.

# Families

  - recommend_*: request sources, pipeline latency, fallbacks, rule errors
  - cache_*: hits, misses, backing store errors, invalidations
  - collaborator_*: latency, errors and throttling of upstream calls
  - circuit_breaker_*: state and results per collaborator breaker
  - events_*: published and consumed events
  - duckdb_*: query latency and errors of the collaborator store
  - ops_api_*: ops HTTP traffic

Use the Record helpers rather than touching the vectors directly so label
sets stay consistent.
*/
package metrics
