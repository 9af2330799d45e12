package react_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/model"
	"github.com/ravikrr/agentgraph/graph/tool"
	"github.com/ravikrr/agentgraph/react"
)

func TestModelNodeAppendsAssistantReply(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "hello"}}}
	n := &react.ModelNode{Model: mock, SystemPrompt: "be terse"}

	out, err := n.Run(&graph.NodeContext{Context: context.Background()}, graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.Len(t, out.Update.Messages, 1)
	require.Equal(t, "hello", out.Update.Messages[0].Text)
	require.Equal(t, 1, out.Update.ModelInvocations)
}

func TestModelNodeOverflowNotice(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "should not be called"}}}
	n := &react.ModelNode{Model: mock, MaxInvocations: 1}

	state := graph.MessagesState{ModelInvocations: 1}
	out, err := n.Run(&graph.NodeContext{Context: context.Background()}, state)
	require.NoError(t, err)
	require.Len(t, out.Update.Messages, 1)
	require.Equal(t, 0, mock.CallCount(), "model must not be invoked once the budget is spent")
	require.Equal(t, 0, out.Update.ModelInvocations)
}

func TestModelNodePrefersExecutorCostTrackerOverOwnField(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "hi"}}}
	ownTracker := graph.NewCostTracker("own", "USD")
	execTracker := graph.NewCostTracker("exec", "USD")
	n := &react.ModelNode{Model: mock, Cost: ownTracker, ModelName: "gpt-4o-mini"}

	_, err := n.Run(&graph.NodeContext{Context: context.Background(), Cost: execTracker}, graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.NotZero(t, execTracker.TotalCost(), "the Executor-attached tracker should record the call")
	require.Zero(t, ownTracker.TotalCost(), "the node's own tracker must be ignored when ctx.Cost is set")
}

func TestModelNodeFallsBackToOwnCostTrackerWithoutExecutorOne(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "hi"}}}
	ownTracker := graph.NewCostTracker("own", "USD")
	n := &react.ModelNode{Model: mock, Cost: ownTracker, ModelName: "gpt-4o-mini"}

	_, err := n.Run(&graph.NodeContext{Context: context.Background()}, graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.NotZero(t, ownTracker.TotalCost())
}

func TestModelNodeAssignsCallIDsToToolCalls(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{
		{ToolCalls: []model.ToolCall{{Name: "add", Input: map[string]any{"a": 2, "b": 3}}}},
	}}
	n := &react.ModelNode{Model: mock}

	out, err := n.Run(&graph.NodeContext{Context: context.Background()}, graph.MessagesState{})
	require.NoError(t, err)
	require.Len(t, out.Update.Messages, 1)
	calls := out.Update.Messages[0].ToolCalls
	require.Len(t, calls, 1)
	require.NotEmpty(t, calls[0].CallID)
	require.Equal(t, "add", calls[0].Name)
}

func TestToolsNodeInvokesPendingCallsInRequestOrder(t *testing.T) {
	add := &tool.MockTool{ToolName: "add", Responses: []map[string]any{{"result": 5}}}
	sub := &tool.MockTool{ToolName: "sub", Responses: []map[string]any{{"result": 8}}}

	toolsNode := react.NewToolsNode([]react.ToolDescriptor{
		{Name: "add", Tool: add},
		{Name: "sub", Tool: sub},
	})

	calls := []graph.ToolCall{
		{CallID: "c1", Name: "add", Arguments: map[string]any{"a": 2, "b": 3}},
		{CallID: "c2", Name: "sub", Arguments: map[string]any{"a": 9, "b": 1}},
	}
	state := graph.MessagesState{Messages: []graph.Message{graph.NewAssistantMessage("", calls)}}

	out, err := toolsNode.Run(&graph.NodeContext{Context: context.Background()}, state)
	require.NoError(t, err)
	require.Len(t, out.Update.Messages, 2)
	require.Equal(t, "c1", out.Update.Messages[0].ToolCallID)
	require.Equal(t, "c2", out.Update.Messages[1].ToolCallID)
	require.JSONEq(t, `{"result":5}`, out.Update.Messages[0].Text)
}

func TestToolsNodeUnknownToolProducesErrorText(t *testing.T) {
	toolsNode := react.NewToolsNode(nil)
	calls := []graph.ToolCall{{CallID: "c1", Name: "missing"}}
	state := graph.MessagesState{Messages: []graph.Message{graph.NewAssistantMessage("", calls)}}

	out, err := toolsNode.Run(&graph.NodeContext{Context: context.Background()}, state)
	require.NoError(t, err)
	require.Contains(t, out.Update.Messages[0].Text, "unknown tool")
}

func TestToolsNodeNoPendingCallsIsNoop(t *testing.T) {
	toolsNode := react.NewToolsNode(nil)
	state := graph.MessagesState{Messages: []graph.Message{graph.NewAssistantMessage("done", nil)}}

	out, err := toolsNode.Run(&graph.NodeContext{Context: context.Background()}, state)
	require.NoError(t, err)
	require.Empty(t, out.Update.Messages)
}
