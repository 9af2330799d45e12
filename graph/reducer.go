package graph

import "github.com/ravikrr/agentgraph/label"

// StateGraph binds a validated BuiltGraph to the Reducer that folds node
// updates into state. It is the unit an Executor runs.
type StateGraph[S, U any] struct {
	graph   *BuiltGraph[S, U]
	reduce  Reducer[S, U]
}

// NewStateGraph binds graph and reduce into an executable StateGraph.
func NewStateGraph[S, U any](graph *BuiltGraph[S, U], reduce Reducer[S, U]) *StateGraph[S, U] {
	return &StateGraph[S, U]{graph: graph, reduce: reduce}
}

// Entry returns the graph's entry label.
func (sg *StateGraph[S, U]) Entry() label.Label { return sg.graph.Entry() }

// sortByRegistration returns labels sorted by the graph's registration
// order — the order in which an Executor must apply a round's updates to
// stay deterministic (Testable Property 3: fold order is registration
// order, not completion order).
func (sg *StateGraph[S, U]) sortByRegistration(labels []label.Label) []label.Label {
	out := make([]label.Label, len(labels))
	copy(out, labels)
	// Insertion sort: rounds are small (bounded by fan-out), so this avoids
	// pulling in sort.Slice's closure overhead for a handful of elements.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && sg.graph.RegistrationOrder(out[j-1]) > sg.graph.RegistrationOrder(out[j]) {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}
