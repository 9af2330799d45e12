package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

func TestPredicateSelectsSuccessors(t *testing.T) {
	a := label.Intern(kind("a"))
	b := label.Intern(kind("b"))

	var pred graph.Predicate[int, int] = func(state int, output int) []label.Label {
		if output > 0 {
			return []label.Label{a}
		}
		return []label.Label{b}
	}

	require.Equal(t, []label.Label{a}, pred(0, 1))
	require.Equal(t, []label.Label{b}, pred(0, -1))
}
