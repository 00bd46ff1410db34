// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package metrics holds the Prometheus instruments for FilmFlow. They are
// registered on the default registry and served at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend client metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_backend_requests_total",
			Help: "Total number of requests to the catalog backend",
		},
		[]string{"endpoint", "status"}, // status: HTTP code or "error"
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmflow_backend_request_duration_seconds",
			Help:    "Duration of catalog backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	BackendRateLimitRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_backend_rate_limit_retries_total",
			Help: "Retries caused by HTTP 429 responses",
		},
		[]string{"endpoint"},
	)

	// Paginated fetcher metrics
	FetchesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_fetches_issued_total",
			Help: "Page fetches issued by list fetchers",
		},
		[]string{"source"}, // search, library
	)

	FetchesStale = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_fetches_stale_total",
			Help: "Responses discarded because a newer request was issued",
		},
		[]string{"source"},
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_fetch_failures_total",
			Help: "Failed page fetches; the previous page stays displayed",
		},
		[]string{"source"},
	)

	DebounceEmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_debounce_emissions_total",
			Help: "Settled query values emitted by debouncers",
		},
		[]string{"source"},
	)

	// Session gate metrics
	GateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_gate_transitions_total",
			Help: "Session status transitions observed by gates",
		},
		[]string{"gate", "to"},
	)

	// Mutation metrics
	MutationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_mutation_outcomes_total",
			Help: "Library mutations by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: committed, rolled_back, discarded, rejected
	)

	MutationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmflow_mutations_in_flight",
			Help: "Library mutations currently awaiting the backend",
		},
	)

	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_review_submissions_total",
			Help: "Review submissions by result",
		},
		[]string{"result"}, // success, invalid, failed, rejected
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_cache_hits_total",
			Help: "In-memory cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_cache_misses_total",
			Help: "In-memory cache misses",
		},
		[]string{"cache"},
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

	// Host API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmflow_api_requests_total",
			Help: "Requests served by the local view-model API",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmflow_api_request_duration_seconds",
			Help:    "Latency of the local view-model API",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmflow_websocket_connections",
			Help: "Connected UI shells",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmflow_websocket_messages_sent_total",
			Help: "View updates broadcast to UI shells",
		},
	)
)

// RecordBackendRequest records one backend call. statusCode 0 means the
// request never produced a response.
func RecordBackendRequest(endpoint string, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	BackendRequestsTotal.WithLabelValues(endpoint, status).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIRequest records one request served by the host API.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordMutation records the outcome of a library mutation.
func RecordMutation(kind, outcome string) {
	MutationOutcomes.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup counts a hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}
