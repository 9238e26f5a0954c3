package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Codeforces API calls, outcome is one of ok, api_error, unavailable.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforces_requests_total",
			Help: "Total number of Codeforces API calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeforces_request_duration_seconds",
			Help:    "Duration of Codeforces API calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)

	// 0 = closed, 1 = half-open, 2 = open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// outcome is "ok" or a generation error kind.
	MashupsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mashups_generated_total",
			Help: "Total number of mashup generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	MashupCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mashup_cache_lookups_total",
			Help: "Mashup cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
