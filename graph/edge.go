package graph

import "github.com/ravikrr/agentgraph/label"

// Edge is a static, unconditional transition from one node to another.
type Edge[S, U any] struct {
	From label.Label
	To   label.Label
}

// Predicate is a conditional edge function: given the state as it stood
// before the round and the output the From node just produced, it returns
// the labels execution should proceed to next. A Predicate may return zero
// labels (this path of execution halts), one, or several (fan-out).
//
// Predicate must be deterministic in (state, output) for replay to hold.
type Predicate[S, U any] func(state S, output U) []label.Label

// conditionalEdge binds a Predicate to the node it fires from.
type conditionalEdge[S, U any] struct {
	from label.Label
	pred Predicate[S, U]
}
