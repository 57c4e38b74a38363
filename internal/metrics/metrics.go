// Package metrics holds the Prometheus collectors for the route service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "course_operation_duration_seconds",
			Help:    "Duration of timed service operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"}, // result: "ok", "error"
	)

	MatrixCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_matrix_cache_requests_total",
			Help: "Distance matrix cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "shared"
	)

	MatrixBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_matrix_builds_total",
			Help: "Distance matrices computed, labeled by whether any pair fell back to geometry",
		},
		[]string{"mode", "fallback"},
	)

	RouteLegRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_route_leg_requests_total",
			Help: "Per-pair routing lookups by outcome",
		},
		[]string{"outcome"}, // "routed", "fallback"
	)

	LegCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_leg_cache_requests_total",
			Help: "Persistent leg cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_upstream_requests_total",
			Help: "HTTP requests sent to the routing provider",
		},
		[]string{"provider", "status"},
	)

	OptimizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "course_optimization_duration_seconds",
			Help:    "Time spent ordering places per strategy",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"strategy"},
	)

	OptimizationScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "course_optimization_overall_score",
			Help:    "Overall score of returned routes",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"strategy"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "course_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveOperation records one timed operation.
func ObserveOperation(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	OperationDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// RecordOptimization records strategy latency and the resulting overall score.
func RecordOptimization(strategy string, d time.Duration, overall float64) {
	OptimizationDuration.WithLabelValues(strategy).Observe(d.Seconds())
	OptimizationScore.WithLabelValues(strategy).Observe(overall)
}
