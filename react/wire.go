package react

import (
	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/label"
)

// nodeKind distinguishes the two ReAct node labels so they can never
// collide with a caller's own label types (label.Intern is type-aware).
type nodeKind string

// ModelLabel and ToolsLabel are the stable labels for the two halves of
// the ReAct loop, usable by callers that want to add their own edges into
// or out of the pair (for example, routing a third node's output into
// ModelLabel to re-enter the loop).
var (
	ModelLabel = label.Intern(nodeKind("react:model"))
	ToolsLabel = label.Intern(nodeKind("react:tools"))
)

// BuildGraph wires modelNode and toolsNode into the standard ReAct
// loop: entry -> Model; Model routes to Tools when its reply carries tool
// calls, otherwise to the terminal label (the round converges and the run
// halts); Tools always routes back to Model.
func BuildGraph(modelNode *ModelNode, toolsNode *ToolsNode) (*graph.BuiltGraph[graph.MessagesState, graph.MessagesUpdate], error) {
	g := graph.NewGraph[graph.MessagesState, graph.MessagesUpdate]()
	g.RegisterNode(ModelLabel, modelNode)
	g.RegisterNode(ToolsLabel, toolsNode)
	g.SetEntry(ModelLabel)

	g.AddConditionalEdge(ModelLabel, func(state graph.MessagesState, update graph.MessagesUpdate) []label.Label {
		for _, m := range update.Messages {
			if m.HasToolCalls() {
				return []label.Label{ToolsLabel}
			}
		}
		return []label.Label{graph.Terminal}
	})
	g.AddEdge(ToolsLabel, ModelLabel)

	return g.Build()
}

// NewStateGraph binds BuildGraph's result to MessagesState's default
// reducer, ready to hand to an Executor.
func NewStateGraph(modelNode *ModelNode, toolsNode *ToolsNode) (*graph.StateGraph[graph.MessagesState, graph.MessagesUpdate], error) {
	built, err := BuildGraph(modelNode, toolsNode)
	if err != nil {
		return nil, err
	}
	return graph.NewStateGraph(built, graph.ReduceMessages), nil
}
