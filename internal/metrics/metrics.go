// Package metrics holds the Prometheus collectors of the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Responses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paloma_responses_total",
			Help: "Total number of generated responses",
		},
		[]string{"intent", "outcome"},
	)

	ResponseConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paloma_response_confidence",
			Help:    "Confidence of generated responses",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	Interactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paloma_interactions_total",
			Help: "Total number of recorded interactions",
		},
		[]string{"outcome"},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paloma_persistence_failures_total",
			Help: "Total number of failed learning state loads and saves",
		},
		[]string{"op"},
	)

	Patterns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paloma_learning_patterns",
			Help: "Number of learned patterns",
		},
	)

	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paloma_rpc_requests_total",
			Help: "Total number of JSON-RPC requests",
		},
		[]string{"method", "status"},
	)
)

// Interaction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNeutral = "neutral"
)
