// Package metrics defines the Prometheus metrics exported on /metrics.
//
// Usage:
//
//	done := metrics.ObserveStore("relation", "CountByTargets")
//	counts, err := store.CountByTargets(ctx, ids, kind)
//	done(err)
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "engagement"

var (
	// StoreOperationsTotal counts store calls by store, operation and outcome.
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of store operations",
		},
		[]string{"store", "operation", "outcome"},
	)

	// StoreOperationDuration tracks store call latency.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of store operations in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"store", "operation"},
	)

	// BreakerState reports circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	// RelationTogglesTotal counts successful toggles by kind and resulting state.
	RelationTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relation_toggles_total",
			Help:      "Total number of relation toggles",
		},
		[]string{"kind", "now_active"},
	)

	// EventsPublishedTotal counts domain events forwarded to the broker.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events forwarded to the broker",
		},
		[]string{"type", "outcome"},
	)

	// HTTPRequestsTotal counts API requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStore starts timing a store call; the returned func records it.
func ObserveStore(store, op string) func(err error) {
	start := time.Now()
	return func(err error) {
		StoreOperationDuration.WithLabelValues(store, op).Observe(time.Since(start).Seconds())
		StoreOperationsTotal.WithLabelValues(store, op, outcome(err)).Inc()
	}
}

// RecordBreakerState sets the gauge for a breaker.
func RecordBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordToggle counts a completed toggle.
func RecordToggle(kind string, nowActive bool) {
	RelationTogglesTotal.WithLabelValues(kind, strconv.FormatBool(nowActive)).Inc()
}

// RecordEventPublished counts a broker publish attempt.
func RecordEventPublished(eventType string, err error) {
	EventsPublishedTotal.WithLabelValues(eventType, outcome(err)).Inc()
}

// RecordHTTPRequest counts and times one API request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
