// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisions counts Authorization Gate outcomes by result:
	// "owner", "delegate", "self", "forbidden".
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifedash",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Authorization gate decisions by outcome.",
		},
		[]string{"outcome"},
	)

	// GrantOperations counts registry mutations by operation and result.
	GrantOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifedash",
			Subsystem: "grants",
			Name:      "operations_total",
			Help:      "Access grant operations by type and result.",
		},
		[]string{"operation", "result"},
	)

	// HTTPRequests counts requests by route pattern and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifedash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by path pattern and status code.",
		},
		[]string{"pattern", "status"},
	)

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lifedash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by path pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"pattern"},
	)
)
