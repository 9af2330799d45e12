package graph_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

func TestPrometheusMetricsRecordsWithoutPanicking(t *testing.T) {
	registry := prometheus.NewRegistry()
	pm := graph.NewPrometheusMetrics(registry)

	n := label.Intern(kind("metrics-node"))
	pm.RecordStepLatency("thread-1", n, 10*time.Millisecond, "success")
	pm.IncrementRetries("thread-1", n, "timeout")
	pm.UpdateFrontierSize(3)
	pm.UpdateInflightNodes(2)
	pm.IncrementMergeConflicts("thread-1", "duplicate-key")
	pm.IncrementCheckpointErrors("Put")

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}

func TestPrometheusMetricsDisableSuppressesRecording(t *testing.T) {
	registry := prometheus.NewRegistry()
	pm := graph.NewPrometheusMetrics(registry)
	pm.Disable()

	n := label.Intern(kind("metrics-node-2"))
	require.NotPanics(t, func() {
		pm.RecordStepLatency("thread-1", n, time.Millisecond, "success")
	})

	pm.Enable()
	require.NotPanics(t, func() {
		pm.RecordStepLatency("thread-1", n, time.Millisecond, "success")
	})
}
