// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Ops API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_api_request_duration_seconds",
			Help:    "Ops API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Personalized content requests by how they were served",
		},
		[]string{"source"}, // source: "cache", "computed", "fallback"
	)

	RecommendPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_pipeline_duration_seconds",
			Help:    "Duration of a full personalization pipeline run",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Requests answered with static default content",
		},
		[]string{"reason"},
	)

	RecommendRuleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_rule_errors_total",
			Help: "Personalization rules skipped because their condition could not be evaluated",
		},
		[]string{"program"},
	)

	RecommendSharedFlights = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_shared_flights_total",
			Help: "Requests that joined an in-flight computation for the same key",
		},
	)

	CompletionWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_completion_writes_total",
			Help: "Content completion writes by result",
		},
		[]string{"result"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Cache backing store failures",
		},
		[]string{"cache_type", "operation"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Cache invalidations by scope",
		},
		[]string{"scope"}, // scope: "key", "program"
	)

	// Collaborator Metrics
	CollaboratorFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_fetch_duration_seconds",
			Help:    "Duration of calls to external collaborators",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collaborator"},
	)

	CollaboratorFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_fetch_errors_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	CollaboratorThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_throttled_total",
			Help: "Calls delayed or rejected by the upstream rate limiter",
		},
		[]string{"collaborator"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events consumed by topic and result",
		},
		[]string{"topic", "result"}, // result: "processed", "duplicate", "invalid", "failed"
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an ops API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendRequest records how a personalized content request was served.
func RecordRecommendRequest(source string) {
	RecommendRequests.WithLabelValues(source).Inc()
}

// RecordPipeline records one pipeline run.
func RecordPipeline(outcome string, duration time.Duration) {
	RecommendPipelineDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFallback records a request answered with default content.
func RecordFallback(reason string) {
	RecommendFallbacks.WithLabelValues(reason).Inc()
}

// RecordRuleError records a skipped rule.
func RecordRuleError(programID string) {
	RecommendRuleErrors.WithLabelValues(programID).Inc()
}

// RecordCompletionWrite records the outcome of a completion write.
func RecordCompletionWrite(err error) {
	if err != nil {
		CompletionWrites.WithLabelValues("failure").Inc()
		return
	}
	CompletionWrites.WithLabelValues("success").Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheError records a backing store failure.
func RecordCacheError(cacheType, operation string) {
	CacheErrors.WithLabelValues(cacheType, operation).Inc()
}

// RecordInvalidation records an invalidation of the given scope.
func RecordInvalidation(scope string) {
	CacheInvalidations.WithLabelValues(scope).Inc()
}

// RecordCollaboratorCall records a call to an external collaborator.
func RecordCollaboratorCall(collaborator string, duration time.Duration, err error) {
	CollaboratorFetchDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
	if err != nil {
		CollaboratorFetchErrors.WithLabelValues(collaborator).Inc()
	}
}

// RecordThrottled records a rate limited collaborator call.
func RecordThrottled(collaborator string) {
	CollaboratorThrottled.WithLabelValues(collaborator).Inc()
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	if err != nil {
		EventsPublished.WithLabelValues(topic, "failure").Inc()
		return
	}
	EventsPublished.WithLabelValues(topic, "success").Inc()
}

// RecordEventConsumed records a consumed event with its result.
func RecordEventConsumed(topic, result string) {
	EventsConsumed.WithLabelValues(topic, result).Inc()
}
