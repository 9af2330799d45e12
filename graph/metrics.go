package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ravikrr/agentgraph/label"
)

// PrometheusMetrics collects Prometheus-compatible metrics for graph
// execution, namespaced "agentgraph_":
//
//   - inflight_nodes (gauge): nodes currently executing within a round.
//   - frontier_size (gauge): number of labels in the current frontier.
//   - step_latency_ms (histogram): node execution duration, by
//     thread_id/node/status.
//   - retries_total (counter): retry attempts, by thread_id/node/reason.
//   - merge_conflicts_total (counter): reducer errors during round
//     reduction, by thread_id/reason.
//   - checkpoint_errors_total (counter): failed Store operations, by op.
//
// All methods are safe for concurrent use.
type PrometheusMetrics struct {
	inflightNodes prometheus.Gauge
	frontierSize  prometheus.Gauge
	stepLatency   *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	mergeConflict *prometheus.CounterVec
	checkpointErr *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics registers every metric with registry (use
// prometheus.DefaultRegisterer for the global registry, or a fresh
// *prometheus.Registry for test isolation).
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	pm := &PrometheusMetrics{enabled: true}

	pm.inflightNodes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentgraph",
		Name:      "inflight_nodes",
		Help:      "Nodes currently executing within the active round",
	})
	pm.frontierSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentgraph",
		Name:      "frontier_size",
		Help:      "Number of labels in the current round's frontier",
	})
	pm.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agentgraph",
		Name:      "step_latency_ms",
		Help:      "Node execution duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"thread_id", "node", "status"})
	pm.retries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentgraph",
		Name:      "retries_total",
		Help:      "Cumulative node retry attempts",
	}, []string{"thread_id", "node", "reason"})
	pm.mergeConflict = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentgraph",
		Name:      "merge_conflicts_total",
		Help:      "Reducer errors encountered while folding a round's updates",
	}, []string{"thread_id", "reason"})
	pm.checkpointErr = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentgraph",
		Name:      "checkpoint_errors_total",
		Help:      "Failed checkpoint store operations",
	}, []string{"op"})

	return pm
}

// RecordStepLatency records one node attempt's duration.
func (pm *PrometheusMetrics) RecordStepLatency(threadID string, node label.Label, latency time.Duration, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.stepLatency.WithLabelValues(threadID, label.AsStr(node), status).Observe(float64(latency.Milliseconds()))
}

// IncrementRetries records one retry attempt for node.
func (pm *PrometheusMetrics) IncrementRetries(threadID string, node label.Label, reason string) {
	if !pm.isEnabled() {
		return
	}
	pm.retries.WithLabelValues(threadID, label.AsStr(node), reason).Inc()
}

// UpdateFrontierSize records the size of the frontier about to run.
func (pm *PrometheusMetrics) UpdateFrontierSize(size int) {
	if !pm.isEnabled() {
		return
	}
	pm.frontierSize.Set(float64(size))
}

// UpdateInflightNodes records how many nodes are executing right now.
func (pm *PrometheusMetrics) UpdateInflightNodes(count int) {
	if !pm.isEnabled() {
		return
	}
	pm.inflightNodes.Set(float64(count))
}

// IncrementMergeConflicts records a reducer failure while folding a round.
func (pm *PrometheusMetrics) IncrementMergeConflicts(threadID, reason string) {
	if !pm.isEnabled() {
		return
	}
	pm.mergeConflict.WithLabelValues(threadID, reason).Inc()
}

// IncrementCheckpointErrors records a failed store operation.
func (pm *PrometheusMetrics) IncrementCheckpointErrors(op string) {
	if !pm.isEnabled() {
		return
	}
	pm.checkpointErr.WithLabelValues(op).Inc()
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// Disable stops metric recording (useful in tests that don't want a shared
// registry polluted).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable resumes metric recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
