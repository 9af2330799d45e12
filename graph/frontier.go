package graph

import "github.com/ravikrr/agentgraph/label"

// roundResult is one node's contribution to a round: the update it
// produced (for reduction) and the successor labels it routes to (for the
// next frontier).
type roundResult[U any] struct {
	node       label.Label
	update     U
	successors []label.Label
	err        error
}

// nextFrontier merges the successor lists of every node that ran this
// round, in the order results is given (the round's frontier order, as
// runRound returns it), deduplicating so that a label named
// by two different nodes in the same round appears only once — at its
// first occurrence. This is what keeps the frontier a set in effect while
// staying a deterministic sequence in practice (Testable Property: frontier
// order is stable across runs of the same graph on the same inputs).
func nextFrontier[U any](results []roundResult[U]) []label.Label {
	seen := make(map[label.Label]bool)
	var out []label.Label
	for _, r := range results {
		for _, l := range r.successors {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// splitTerminal separates frontier into its non-terminal members (in
// order) and whether the terminal label is present. A frontier containing
// the terminal label alongside still-active members means the Executor
// must run those members to completion and then stop regardless of where
// they themselves route next.
func splitTerminal(frontier []label.Label) (active []label.Label, hasTerminal bool) {
	for _, l := range frontier {
		if l == Terminal {
			hasTerminal = true
			continue
		}
		active = append(active, l)
	}
	return active, hasTerminal
}
