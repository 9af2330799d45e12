package react

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/model"
	"github.com/ravikrr/agentgraph/graph/tool"
	"github.com/ravikrr/agentgraph/label"
)

// overflowNotice is the Assistant message appended in place of a real
// model call once MaxInvocations has been reached, so the conversation
// history records why the loop stopped rather than silently truncating.
const overflowNotice = "[reached the configured maximum number of model invocations for this run]"

// ToolDescriptor is what a ModelNode offers a ChatModel as an invokable
// tool, paired with the tool.Tool that actually executes it in ToolsNode.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      map[string]any
	Tool        tool.Tool
}

// ModelNode is the "Model" half of the ReAct loop: it sends the
// conversation so far to a ChatModel and appends the reply. When the
// reply requests tool calls, it assigns each one a fresh CallID so a
// later ToolsNode run can answer them individually.
type ModelNode struct {
	Model          model.ChatModel
	Tools          []ToolDescriptor
	SystemPrompt   string
	MaxInvocations int // 0 = unlimited

	Cost      *graph.CostTracker // optional; nil disables cost tracking
	ModelName string             // pricing key passed to Cost.RecordLLMCall
}

// Run implements graph.Node[graph.MessagesState, graph.MessagesUpdate].
func (n *ModelNode) Run(ctx *graph.NodeContext, state graph.MessagesState) (graph.NodeOutcome[graph.MessagesUpdate], error) {
	if n.MaxInvocations > 0 && state.ModelInvocations >= n.MaxInvocations {
		return graph.NodeOutcome[graph.MessagesUpdate]{
			Update: graph.MessagesUpdate{Messages: []graph.Message{graph.NewAssistantMessage(overflowNotice, nil)}},
		}, nil
	}

	msgs := toModelMessages(n.SystemPrompt, state.Messages)
	out, err := n.Model.Chat(ctx, msgs, toolSpecs(n.Tools))
	if err != nil {
		return graph.NodeOutcome[graph.MessagesUpdate]{}, err
	}

	if cost := n.costTracker(ctx); cost != nil {
		cost.RecordLLMCall(n.ModelName, estimateTokens(msgs), estimateTokensForText(out.Text), label.Label{})
	}

	calls := make([]graph.ToolCall, len(out.ToolCalls))
	for i, c := range out.ToolCalls {
		calls[i] = graph.ToolCall{CallID: graph.NewCallID(), Name: c.Name, Arguments: c.Input}
	}

	return graph.NodeOutcome[graph.MessagesUpdate]{
		Update: graph.MessagesUpdate{
			Messages:         []graph.Message{graph.NewAssistantMessage(out.Text, calls)},
			ModelInvocations: 1,
		},
	}, nil
}

// costTracker prefers the Executor-wide tracker attached via
// graph.WithCostTracker so a single tracker covers every node in a run;
// ModelNode.Cost remains as a fallback for callers that wire cost tracking
// directly onto the node instead of onto the Executor.
func (n *ModelNode) costTracker(ctx *graph.NodeContext) *graph.CostTracker {
	if ctx.Cost != nil {
		return ctx.Cost
	}
	return n.Cost
}

// ToolsNode is the "Tools" half of the ReAct loop: it reads the pending
// tool calls off the last Assistant message and invokes each named tool
// concurrently, appending one Tool message per call in the original
// request order (not completion order).
type ToolsNode struct {
	Tools map[string]tool.Tool
}

// NewToolsNode builds a ToolsNode from the same descriptors given to a
// ModelNode, so the two stay in sync by construction.
func NewToolsNode(descs []ToolDescriptor) *ToolsNode {
	tools := make(map[string]tool.Tool, len(descs))
	for _, d := range descs {
		tools[d.Name] = d.Tool
	}
	return &ToolsNode{Tools: tools}
}

// Run implements graph.Node[graph.MessagesState, graph.MessagesUpdate].
func (n *ToolsNode) Run(ctx *graph.NodeContext, state graph.MessagesState) (graph.NodeOutcome[graph.MessagesUpdate], error) {
	calls := state.PendingToolCalls()
	if len(calls) == 0 {
		return graph.NodeOutcome[graph.MessagesUpdate]{}, nil
	}

	results := make([]graph.Message, len(calls))
	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func(i int, c graph.ToolCall) {
			defer wg.Done()
			results[i] = n.invokeOne(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return graph.NodeOutcome[graph.MessagesUpdate]{
		Update: graph.MessagesUpdate{Messages: results},
	}, nil
}

// ToolEvent is published to the sink by ToolsNode.RunStream as each
// pending tool call finishes.
type ToolEvent struct {
	CallID string
	Name   string
	Status string // "ok" or "error"
}

// RunStream implements graph.StreamingNode[graph.MessagesState,
// graph.MessagesUpdate]. It runs the same concurrent invocations as Run,
// publishing a ToolEvent to sink as each call finishes — emission order
// across the concurrently-running calls is whatever order they finish in,
// which is exactly the order those events leave this node.
func (n *ToolsNode) RunStream(ctx *graph.NodeContext, state graph.MessagesState, sink graph.EventSink[any]) (graph.NodeOutcome[graph.MessagesUpdate], error) {
	calls := state.PendingToolCalls()
	if len(calls) == 0 {
		return graph.NodeOutcome[graph.MessagesUpdate]{}, nil
	}

	results := make([]graph.Message, len(calls))
	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func(i int, c graph.ToolCall) {
			defer wg.Done()
			msg := n.invokeOne(ctx, c)
			results[i] = msg
			status := "ok"
			if strings.HasPrefix(msg.Text, "error:") {
				status = "error"
			}
			sink.Publish(ToolEvent{CallID: c.CallID, Name: c.Name, Status: status})
		}(i, c)
	}
	wg.Wait()

	return graph.NodeOutcome[graph.MessagesUpdate]{
		Update: graph.MessagesUpdate{Messages: results},
	}, nil
}

func (n *ToolsNode) invokeOne(ctx *graph.NodeContext, c graph.ToolCall) graph.Message {
	t, ok := n.Tools[c.Name]
	if !ok {
		return graph.NewToolMessage(c.CallID, fmt.Sprintf("error: unknown tool %q", c.Name))
	}
	out, err := t.Call(ctx, c.Arguments)
	if err != nil {
		return graph.NewToolMessage(c.CallID, fmt.Sprintf("error: %v", err))
	}
	b, err := json.Marshal(out)
	if err != nil {
		return graph.NewToolMessage(c.CallID, fmt.Sprintf("error: marshaling tool result: %v", err))
	}
	return graph.NewToolMessage(c.CallID, string(b))
}

// estimateTokens gives a rough, provider-agnostic token count for cost
// tracking when the ChatModel adapter doesn't report usage directly — ~4
// characters per token is the commonly cited approximation for English
// text across GPT/Claude/Gemini tokenizers.
func estimateTokens(msgs []model.Message) int {
	total := 0
	for _, m := range msgs {
		total += estimateTokensForText(m.Content)
	}
	return total
}

func estimateTokensForText(s string) int {
	return (len(s) + 3) / 4
}
