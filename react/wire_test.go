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

// S2: one tool round-trip — Model requests add(2,3), Tools answers, Model
// replies with the final answer.
func TestReActOneToolRoundTrip(t *testing.T) {
	add := &tool.MockTool{ToolName: "add", Responses: []map[string]any{{"sum": 5}}}

	mock := &model.MockChatModel{Responses: []model.ChatOut{
		{ToolCalls: []model.ToolCall{{Name: "add", Input: map[string]any{"a": 2, "b": 3}}}},
		{Text: "5"},
	}}

	modelNode := &react.ModelNode{Model: mock, Tools: []react.ToolDescriptor{{Name: "add", Tool: add}}}
	toolsNode := react.NewToolsNode(modelNode.Tools)

	sg, err := react.NewStateGraph(modelNode, toolsNode)
	require.NoError(t, err)

	ex := graph.NewExecutor[graph.MessagesState, graph.MessagesUpdate](sg)
	initial := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("what is 2+3")}}

	final, err := ex.Run(context.Background(), "thread-react-s2", initial)
	require.NoError(t, err)

	require.Len(t, final.Messages, 4)
	require.Equal(t, graph.RoleUser, final.Messages[0].Role)
	require.True(t, final.Messages[1].HasToolCalls())
	require.Equal(t, graph.RoleTool, final.Messages[2].Role)
	require.Equal(t, final.Messages[1].ToolCalls[0].CallID, final.Messages[2].ToolCallID)
	require.Equal(t, "5", final.Messages[3].Text)
	require.Equal(t, 2, final.ModelInvocations)
}

// S2 again, but driven through RunStream: ToolsNode implements
// graph.StreamingNode and must publish one ToolEvent for the add() call.
func TestReActOneToolRoundTripStreams(t *testing.T) {
	add := &tool.MockTool{ToolName: "add", Responses: []map[string]any{{"sum": 5}}}

	mock := &model.MockChatModel{Responses: []model.ChatOut{
		{ToolCalls: []model.ToolCall{{Name: "add", Input: map[string]any{"a": 2, "b": 3}}}},
		{Text: "5"},
	}}

	modelNode := &react.ModelNode{Model: mock, Tools: []react.ToolDescriptor{{Name: "add", Tool: add}}}
	toolsNode := react.NewToolsNode(modelNode.Tools)

	sg, err := react.NewStateGraph(modelNode, toolsNode)
	require.NoError(t, err)

	ex := graph.NewExecutor[graph.MessagesState, graph.MessagesUpdate](sg)
	sink, events := graph.NewEventSink[any](8)

	initial := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("what is 2+3")}}

	done := make(chan struct{})
	var seen []react.ToolEvent
	go func() {
		defer close(done)
		for ev := range events {
			if te, ok := ev.(react.ToolEvent); ok {
				seen = append(seen, te)
			}
		}
	}()

	final, err := ex.RunStream(context.Background(), "thread-react-stream", initial, sink)
	require.NoError(t, err)
	sink.Close()
	<-done

	require.Len(t, final.Messages, 4)
	require.Len(t, seen, 1)
	require.Equal(t, "add", seen[0].Name)
	require.Equal(t, "ok", seen[0].Status)
}

func TestReActNoToolCallsConverges(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "just an answer"}}}
	modelNode := &react.ModelNode{Model: mock}
	toolsNode := react.NewToolsNode(nil)

	sg, err := react.NewStateGraph(modelNode, toolsNode)
	require.NoError(t, err)
	ex := graph.NewExecutor[graph.MessagesState, graph.MessagesUpdate](sg)

	final, err := ex.Run(context.Background(), "thread-react-noop", graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.Len(t, final.Messages, 2)
	require.Equal(t, "just an answer", final.Messages[1].Text)
}
