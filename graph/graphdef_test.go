package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

func noopNode() graph.Node[int, int] {
	return graph.NodeFunc[int, int](func(ctx *graph.NodeContext, state int) (graph.NodeOutcome[int], error) {
		return graph.NodeOutcome[int]{Update: state}, nil
	})
}

func TestBuildRequiresEntry(t *testing.T) {
	g := graph.NewGraph[int, int]()
	g.RegisterNode(label.Intern(kind("a")), noopNode())

	_, err := g.Build()
	require.Error(t, err)
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildRejectsEdgeToUnregisteredNode(t *testing.T) {
	a := label.Intern(kind("ga"))
	missing := label.Intern(kind("gmissing"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.SetEntry(a)
	g.AddEdge(a, missing)

	_, err := g.Build()
	require.Error(t, err)
}

func TestBuildSucceedsForConnectedGraph(t *testing.T) {
	a := label.Intern(kind("gba"))
	b := label.Intern(kind("gbb"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.RegisterNode(b, noopNode())
	g.SetEntry(a)
	g.AddEdge(a, b)
	g.AddEdge(b, graph.Terminal)

	built, err := g.Build()
	require.NoError(t, err)
	require.Equal(t, a, built.Entry())
}

func TestRegistrationOrderReflectsFirstRegisterNodeCall(t *testing.T) {
	a := label.Intern(kind("roa"))
	b := label.Intern(kind("rob"))
	c := label.Intern(kind("roc"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(b, noopNode())
	g.RegisterNode(a, noopNode())
	g.RegisterNode(c, noopNode())
	g.SetEntry(b)
	g.AddEdge(b, a)
	g.AddEdge(a, c)
	g.AddEdge(c, graph.Terminal)

	built, err := g.Build()
	require.NoError(t, err)
	require.Less(t, built.RegistrationOrder(b), built.RegistrationOrder(a))
	require.Less(t, built.RegistrationOrder(a), built.RegistrationOrder(c))
}

func TestBuildRejectsUnreachableNode(t *testing.T) {
	a := label.Intern(kind("ura"))
	orphan := label.Intern(kind("urorphan"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.RegisterNode(orphan, noopNode())
	g.SetEntry(a)
	g.AddEdge(a, graph.Terminal)

	_, err := g.Build()
	require.Error(t, err)
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildRejectsUnreachableTerminal(t *testing.T) {
	a := label.Intern(kind("uta"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.SetEntry(a)

	_, err := g.Build()
	require.Error(t, err)
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildAcceptsConditionalOnlyRouting(t *testing.T) {
	a := label.Intern(kind("coa"))
	b := label.Intern(kind("cob"))

	g := graph.NewGraph[int, int]()
	g.RegisterNode(a, noopNode())
	g.RegisterNode(b, noopNode())
	g.SetEntry(a)
	g.AddConditionalEdge(a, func(state int, output int) []label.Label {
		return []label.Label{b}
	})

	built, err := g.Build()
	require.NoError(t, err)
	require.Equal(t, a, built.Entry())
}
