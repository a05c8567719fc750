// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package api serves the operator-facing HTTP surface of Careguide.

It is not a patient API. Routes:

	GET /healthz                                  liveness
	GET /readyz                                   dependency checks and breaker states
	GET /metrics                                  Prometheus exposition
	GET /api/v1/content/{userID}/{programID}       personalized content preview
	GET /api/v1/content/{userID}/{programID}/cache cache state and completion count
	GET /api/v1/engine/metrics                     engine counter snapshot

The preview endpoint accepts force_refresh, exclude_completed and caps
(for example caps=recommended=3,quickHelp=2) query parameters.

Middleware order: request id and correlation id, real IP, panic recovery,
then for /api/v1 a per-IP limit (go-chi/httprate), security headers,
request metrics and request logging.

Responses use the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
*/
package api
