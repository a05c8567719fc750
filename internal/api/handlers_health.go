// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// ReadinessStatus is the /readyz payload.
type ReadinessStatus struct {
	// Status is ready, degraded (a breaker is not closed) or not_ready.
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Breakers map[string]string `json:"breakers,omitempty"`
	Uptime   float64           `json:"uptime_seconds"`
}

// Healthz reports that the process is alive, regardless of dependencies.
func (router *Router) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(router.startTime).Seconds(),
	})
}

// Readyz runs every readiness check. A failed check answers 503. An open
// breaker only degrades the status because the engine still serves
// fallback content.
func (router *Router) Readyz(w http.ResponseWriter, r *http.Request) {
	status := ReadinessStatus{
		Status: "ready",
		Checks: make(map[string]string, len(router.deps.Checks)),
		Uptime: time.Since(router.startTime).Seconds(),
	}

	ready := true
	for _, check := range router.deps.Checks {
		if err := runCheck(r.Context(), check); err != nil {
			ready = false
			status.Checks[check.Name] = err.Error()
			router.logger.Warn().Err(err).Str("check", check.Name).Msg("readiness check failed")
			continue
		}
		status.Checks[check.Name] = "ok"
	}

	if router.deps.BreakerStates != nil {
		status.Breakers = router.deps.BreakerStates()
		for _, state := range status.Breakers {
			if state != "closed" && state != "disabled" {
				status.Status = "degraded"
			}
		}
	}

	code := http.StatusOK
	if !ready {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).Respond(code, status)
}

func runCheck(ctx context.Context, check ReadinessCheck) error {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return check.Check(ctx)
}
