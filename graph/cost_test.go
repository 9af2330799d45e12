package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

func TestCostTrackerAccumulatesKnownModel(t *testing.T) {
	ct := graph.NewCostTracker("thread-1", "USD")
	ct.RecordLLMCall("gpt-4o-mini", 1000, 500, label.Label{})

	require.Greater(t, ct.TotalCost(), 0.0)
	byModel := ct.CostByModel()
	require.Contains(t, byModel, "gpt-4o-mini")
}

func TestCostTrackerCustomPricingDoesNotMutateDefaults(t *testing.T) {
	ctA := graph.NewCostTracker("thread-a", "USD")
	ctA.SetCustomPricing("gpt-4o-mini", 999, 999)

	ctB := graph.NewCostTracker("thread-b", "USD")
	ctB.RecordLLMCall("gpt-4o-mini", 1_000_000, 0, label.Label{})

	require.Less(t, ctB.TotalCost(), 999.0, "ctB must see the unmodified default price, not ctA's custom override")
}

func TestCostTrackerDisable(t *testing.T) {
	ct := graph.NewCostTracker("thread-2", "USD")
	ct.Disable()
	ct.RecordLLMCall("gpt-4o-mini", 1000, 1000, label.Label{})
	require.Equal(t, 0.0, ct.TotalCost())
}
