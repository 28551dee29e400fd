package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnsTotal counts finished turns.
	// Labels: outcome (refused, useful, not_useful, best_effort, failed, cancelled), intent
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Subsystem: "graph",
		Name:      "turns_total",
		Help:      "Chatbot turns by outcome",
	}, []string{"outcome", "intent"})

	// turnRetries is the resample count per turn.
	turnRetries = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Subsystem: "graph",
		Name:      "retries",
		Help:      "Generate/grade resamples per turn",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	})

	// nodeLatency measures time spent inside each node.
	// Labels: node
	nodeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Subsystem: "graph",
		Name:      "node_latency_seconds",
		Help:      "Latency of graph nodes in seconds",
		Buckets:   []float64{0.0005, 0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"node"})
)

const (
	outcomeRefused    = "refused"
	outcomeUseful     = "useful"
	outcomeNotUseful  = "not_useful"
	outcomeBestEffort = "best_effort"
	outcomeFailed     = "failed"
	outcomeCancelled  = "cancelled"
)
