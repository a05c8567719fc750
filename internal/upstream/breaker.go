// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/metrics"
	"github.com/tomtom215/careguide/internal/recommend"
)

// ErrThrottled is returned when the rate limiter refuses a call.
var ErrThrottled = errors.New("collaborator call throttled")

// Settings configures the breakers and limiter of a Guard.
type Settings struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the window after which closed-state counts reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration

	// MinRequests is the number of requests in a window before the failure
	// ratio is considered.
	MinRequests uint32

	// FailureRatio opens the breaker when reached.
	FailureRatio float64

	// RateLimit is the sustained calls per second per collaborator.
	// Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size.
	Burst int
}

// DefaultSettings returns the production breaker settings: three trial
// requests, a one minute window, two minutes open, and a 60% failure ratio
// over at least ten requests.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker guards calls to one collaborator.
//
// The breaker uses real time for its interval and timeout. Tests exercise
// it through request outcomes, not by waiting on the clock.
type Breaker struct {
	name    string
	cb      *gobreaker.CircuitBreaker[interface{}]
	limiter *rate.Limiter
}

// NewBreaker creates a breaker for the named collaborator.
//
//nolint:gocritic // Settings passed by value for immutability
func NewBreaker(name string, s Settings) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	b := &Breaker{name: name}
	if s.RateLimit > 0 {
		burst := s.Burst
		if burst <= 0 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(s.RateLimit), burst)
	}

	b.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logging.Warn().
					Str("collaborator", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("collaborator", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: isSuccessful,
	})
	return b
}

// Name returns the collaborator name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// isSuccessful keeps expected outcomes from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, context.Canceled)
}

// execute runs fn under the limiter and the breaker.
func (b *Breaker) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			metrics.RecordThrottled(b.name)
			return nil, fmt.Errorf("%s: %w: %v", b.name, ErrThrottled, err)
		}
	}

	start := time.Now()
	result, err := b.cb.Execute(fn)
	metrics.RecordCollaboratorCall(b.name, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("collaborator", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
// A nil result of the right kind is passed through as nil.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
