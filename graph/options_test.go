package graph_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/label"
)

func TestExecutorDefaultsRunWithoutOptions(t *testing.T) {
	a := label.Intern(kind("opta"))
	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.SetEntry(a)
	g.AddEdge(a, graph.Terminal)
	built, err := g.Build()
	require.NoError(t, err)

	sg := graph.NewStateGraph(built, func(prev int, update int) int { return prev + update })
	ex := graph.NewExecutor[int, int](sg)
	require.NotNil(t, ex)

	_, err = ex.Run(context.Background(), "thread-opta", 0)
	require.NoError(t, err)
}

func TestWithStoreEnablesCheckpointing(t *testing.T) {
	a := label.Intern(kind("optb"))
	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.SetEntry(a)
	g.AddEdge(a, graph.Terminal)
	built, err := g.Build()
	require.NoError(t, err)

	sg := graph.NewStateGraph(built, func(prev int, update int) int { return prev + update })
	mem := store.NewMemStore[int]()

	ex := graph.NewExecutor[int, int](sg,
		graph.WithStore[int](mem),
		graph.WithMaxSteps[int](5),
		graph.WithDefaultNodeTimeout[int](time.Second),
	)
	require.NotNil(t, ex)

	_, err = ex.Run(context.Background(), "thread-optb", 0)
	require.NoError(t, err)
	checkpoints, err := mem.List(context.Background(), "thread-optb", 0)
	require.NoError(t, err)
	require.Len(t, checkpoints, 1)
}
