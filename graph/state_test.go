package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
)

func TestReduceMessagesAppends(t *testing.T) {
	prev := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("hi")}}
	update := graph.MessagesUpdate{
		Messages:         []graph.Message{graph.NewAssistantMessage("hello", nil)},
		ModelInvocations: 1,
	}

	next := graph.ReduceMessages(prev, update)

	require.Len(t, next.Messages, 2)
	require.Equal(t, "hi", next.Messages[0].Text)
	require.Equal(t, "hello", next.Messages[1].Text)
	require.Equal(t, 1, next.ModelInvocations)
}

func TestReduceMessagesDoesNotMutatePrev(t *testing.T) {
	prev := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("hi")}}
	_ = graph.ReduceMessages(prev, graph.MessagesUpdate{Messages: []graph.Message{graph.NewUserMessage("again")}})

	require.Len(t, prev.Messages, 1, "reducer must not append into prev's backing array")
}

func TestLastAssistantMessage(t *testing.T) {
	s := graph.MessagesState{Messages: []graph.Message{
		graph.NewUserMessage("q1"),
		graph.NewAssistantMessage("a1", nil),
		graph.NewUserMessage("q2"),
	}}
	_, ok := s.LastAssistantMessage()
	require.True(t, ok)

	s2 := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("q1")}}
	_, ok = s2.LastAssistantMessage()
	require.False(t, ok)
}

func TestPendingToolCalls(t *testing.T) {
	calls := []graph.ToolCall{{CallID: "c1", Name: "search"}}
	s := graph.MessagesState{Messages: []graph.Message{
		graph.NewUserMessage("q"),
		graph.NewAssistantMessage("", calls),
	}}
	require.Equal(t, calls, s.PendingToolCalls())

	s2 := graph.MessagesState{Messages: []graph.Message{graph.NewAssistantMessage("done", nil)}}
	require.Empty(t, s2.PendingToolCalls())
}

func TestCloneIsIndependent(t *testing.T) {
	s := graph.MessagesState{Messages: []graph.Message{graph.NewUserMessage("q")}}
	c := s.Clone()
	c.Messages[0] = graph.NewUserMessage("mutated")

	require.Equal(t, "q", s.Messages[0].Text)
}
