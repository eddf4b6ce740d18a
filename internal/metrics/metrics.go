// Package metrics provides Prometheus instrumentation for the bridge
// server and coordinator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Event store metrics.
var (
	EventsAppendedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_events_appended_total",
		Help: "Total number of events appended to thread logs.",
	}, []string{"type"})

	EventsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_events_rejected_total",
		Help: "Total number of events rejected at admission.",
	}, []string{"reason"})

	ActiveThreads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_active_threads",
		Help: "Number of threads known to the index.",
	})
)

// SSE metrics.
var (
	SSEStreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_sse_streams_active",
		Help: "Number of currently open SSE streams.",
	})

	PresenceEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_presence_entries",
		Help: "Number of live presence entries across all threads.",
	})
)

// Coordinator metrics.
var (
	DispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_dispatches_total",
		Help: "Total number of adapter invocations by outcome.",
	}, []string{"agent", "outcome"})

	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_dispatch_duration_seconds",
		Help:    "Adapter invocation duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"agent"})

	PollTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_poll_ticks_total",
		Help: "Total number of coordinator poll-loop ticks completed.",
	})

	BridgeRequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_request_errors_total",
		Help: "Total number of failed HTTP calls from the coordinator to the bridge.",
	}, []string{"op"})
)
