package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

type kind string

func TestNodeFuncAdaptsPlainFunction(t *testing.T) {
	var f graph.Node[int, int] = graph.NodeFunc[int, int](func(ctx *graph.NodeContext, state int) (graph.NodeOutcome[int], error) {
		return graph.NodeOutcome[int]{Update: state + 1}, nil
	})

	out, err := f.Run(&graph.NodeContext{Context: context.Background()}, 41)
	require.NoError(t, err)
	require.Equal(t, 42, out.Update)
}

func TestNodeOutcomeCarriesChosenSuccessors(t *testing.T) {
	next := label.Intern(kind("next"))
	out := graph.NodeOutcome[int]{Update: 1, Next: []label.Label{next}}
	require.Equal(t, []label.Label{next}, out.Next)
}
