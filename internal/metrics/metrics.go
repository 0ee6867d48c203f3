// Package metrics provides Prometheus metrics for the patron graph service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphOperationsTotal tracks graph mutations by operation and status
	GraphOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patron_graph",
			Subsystem: "graph",
			Name:      "operations_total",
			Help:      "Total number of graph mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// HistoryActionsTotal tracks undo, redo and clear requests
	HistoryActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patron_graph",
			Subsystem: "history",
			Name:      "actions_total",
			Help:      "Total number of history actions by action and result",
		},
		[]string{"action", "result"},
	)

	// PersistDuration tracks how long saving the graph state takes
	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "patron_graph",
			Subsystem: "store",
			Name:      "persist_duration_seconds",
			Help:      "Duration of graph state persistence in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// PendingLinks tracks household links waiting for completion
	PendingLinks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "patron_graph",
			Subsystem: "links",
			Name:      "pending",
			Help:      "Number of household links waiting for completion",
		},
	)

	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patron_graph",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "patron_graph",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "route"},
	)
)

// RecordOperation counts a graph mutation as success or error.
func RecordOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	GraphOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordHistory(action string, applied bool) {
	result := "applied"
	if !applied {
		result = "noop"
	}
	HistoryActionsTotal.WithLabelValues(action, result).Inc()
}
