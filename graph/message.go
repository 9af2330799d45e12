// Package graph provides the core stateful graph execution engine.
package graph

import "github.com/google/uuid"

// Role identifies which participant produced a Message.
type Role int

const (
	// RoleSystem sets context or behavior for the conversation.
	RoleSystem Role = iota
	// RoleUser carries input from the human or calling application.
	RoleUser
	// RoleAssistant carries a model-generated reply, optionally with
	// ToolCalls the model wants executed.
	RoleAssistant
	// RoleTool carries the result of a single ToolCall, bound to it by
	// call-id.
	RoleTool
)

// ToolCall is a single tool invocation requested by an Assistant message.
// CallID is the only identity linking a later Tool message back to this
// request; the agent loop's correctness depends on CallID being unique
// within a conversation.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments map[string]any
}

// Message is an immutable, tagged conversation entry. Once constructed a
// Message is never mutated in place; it is shared by reference between the
// state it lives in and anything that read it out.
type Message struct {
	Role Role

	// Text is the message content. Populated for System, User and Tool
	// messages, and optionally for Assistant messages (an Assistant
	// message may carry text, ToolCalls, or both).
	Text string

	// ToolCalls is populated only on Assistant messages that request tool
	// execution. Empty otherwise.
	ToolCalls []ToolCall

	// ToolCallID binds a Tool message to the ToolCall.CallID it answers.
	// Populated only on Tool messages.
	ToolCallID string
}

// NewSystemMessage constructs a System message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// NewUserMessage constructs a User message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewAssistantMessage constructs an Assistant message carrying text and/or
// tool calls. Either may be empty, but not both.
func NewAssistantMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// NewToolMessage constructs a Tool message answering the call identified by
// callID.
func NewToolMessage(callID, result string) Message {
	return Message{Role: RoleTool, Text: result, ToolCallID: callID}
}

// NewCallID generates a call-id unique within a conversation. Nodes that
// synthesize ToolCalls (rather than receiving them from a model provider)
// should use this rather than hand-rolling an id scheme.
func NewCallID() string {
	return uuid.NewString()
}

// HasToolCalls reports whether m is an Assistant message requesting tool
// execution.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}
