// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrchestrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_requests_total",
			Help: "Total number of orchestration requests",
		},
		[]string{"persona", "status"},
	)

	OrchestrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "orchestrator_request_duration_seconds",
			Help: "Duration of orchestration requests in seconds",
		},
		[]string{"persona"},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_tool_invocations_total",
			Help: "Total number of capability invocations",
		},
		[]string{"tool", "status"},
	)

	RetrievalDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_retrieval_degraded_total",
			Help: "Number of retrievals served from the stub fallback",
		},
	)

	OffersReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orchestrator_offers_returned",
			Help:    "Number of offers attached per response",
			Buckets: []float64{0, 1, 2},
		},
	)
)
