// Package react implements the ReAct agent pattern (alternating model and
// tool-execution nodes) on top of the graph package's MessagesState.
package react

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/model"
)

// toModelMessages converts a MessagesState history into the flat
// role/content form graph/model's ChatModel adapters expect.
//
// model.Message has no structured tool-call fields (it predates this
// package), so an Assistant message's tool calls and the Tool messages
// answering them are serialized into the message text instead of being
// dropped. This keeps full context flowing to the provider without
// reworking the graph/model/openai adapter's request shaping.
func toModelMessages(systemPrompt string, history []graph.Message) []model.Message {
	out := make([]model.Message, 0, len(history)+1)
	if systemPrompt != "" {
		out = append(out, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		switch m.Role {
		case graph.RoleSystem:
			out = append(out, model.Message{Role: model.RoleSystem, Content: m.Text})
		case graph.RoleUser:
			out = append(out, model.Message{Role: model.RoleUser, Content: m.Text})
		case graph.RoleAssistant:
			out = append(out, model.Message{Role: model.RoleAssistant, Content: assistantContent(m)})
		case graph.RoleTool:
			out = append(out, model.Message{Role: model.RoleUser, Content: toolContent(m)})
		}
	}
	return out
}

func assistantContent(m graph.Message) string {
	if len(m.ToolCalls) == 0 {
		return m.Text
	}
	var b strings.Builder
	if m.Text != "" {
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	for _, c := range m.ToolCalls {
		args, _ := json.Marshal(c.Arguments)
		fmt.Fprintf(&b, "[called tool %s(%s) id=%s]\n", c.Name, args, c.CallID)
	}
	return b.String()
}

func toolContent(m graph.Message) string {
	return fmt.Sprintf("[tool result for call %s]\n%s", m.ToolCallID, m.Text)
}

// toolSpecs converts tool descriptors into the ToolSpec shape a ChatModel
// expects to see offered to it.
func toolSpecs(descs []ToolDescriptor) []model.ToolSpec {
	out := make([]model.ToolSpec, len(descs))
	for i, d := range descs {
		out[i] = model.ToolSpec{Name: d.Name, Description: d.Description, Schema: d.Schema}
	}
	return out
}
