// Command reactagent drives the ReAct loop (react.BuildGraph) end to end
// against a small in-process calculator tool, using a scripted ChatModel
// in place of a real provider so the example runs without credentials.
// See cmd/openaiagent for the same loop against a real provider and tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/emit"
	"github.com/ravikrr/agentgraph/graph/model"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/react"
)

// addTool implements tool.Tool by summing its "a" and "b" arguments.
type addTool struct{}

func (addTool) Name() string { return "add" }

func (addTool) Call(ctx context.Context, input map[string]any) (map[string]any, error) {
	a, _ := input["a"].(float64)
	b, _ := input["b"].(float64)
	return map[string]any{"sum": a + b}, nil
}

// scriptedModel is a minimal ChatModel that asks for the add tool once,
// then answers from its result — standing in for a real provider so this
// example runs offline.
type scriptedModel struct{}

func (scriptedModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	// A tool result is serialized into a User-role message (see
	// react.toolContent); once one appears, answer from it instead of
	// asking for the tool again.
	for _, m := range messages {
		if m.Role == model.RoleUser && len(m.Content) > 0 && isToolResult(m.Content) {
			var result struct {
				Sum float64 `json:"sum"`
			}
			if err := extractToolResult(m.Content, &result); err == nil {
				return model.ChatOut{Text: fmt.Sprintf("The sum is %g.", result.Sum)}, nil
			}
		}
	}
	return model.ChatOut{
		ToolCalls: []model.ToolCall{{Name: "add", Input: map[string]any{"a": 2.0, "b": 3.0}}},
	}, nil
}

func isToolResult(content string) bool {
	return strings.HasPrefix(content, "[tool result")
}

func extractToolResult(content string, out *struct {
	Sum float64 `json:"sum"`
}) error {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return fmt.Errorf("no JSON payload in tool result")
	}
	return json.Unmarshal([]byte(content[start:]), out)
}

func main() {
	modelNode := &react.ModelNode{
		Model:        scriptedModel{},
		SystemPrompt: "You are a calculator assistant. Use the add tool for arithmetic.",
		Tools: []react.ToolDescriptor{
			{Name: "add", Description: "adds two numbers", Tool: addTool{}},
		},
		MaxInvocations: 6,
	}
	toolsNode := react.NewToolsNode(modelNode.Tools)

	sg, err := react.NewStateGraph(modelNode, toolsNode)
	if err != nil {
		log.Fatalf("build ReAct graph: %v", err)
	}

	st := store.NewMemStore[graph.MessagesState]()
	ex := graph.NewExecutor[graph.MessagesState, graph.MessagesUpdate](sg,
		graph.WithStore[graph.MessagesState](st),
		graph.WithEmitter[graph.MessagesState](emit.NewLogEmitter(os.Stdout, false)),
		graph.WithMaxSteps[graph.MessagesState](20),
	)

	initial := graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage("what is 2 plus 3?")},
	}

	final, err := ex.Run(context.Background(), "reactagent-demo", initial)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	fmt.Println()
	fmt.Println("=== conversation ===")
	for _, m := range final.Messages {
		fmt.Printf("[%s] %s\n", roleName(m.Role), m.Text)
	}
	fmt.Printf("\nmodel invocations: %d\n", final.ModelInvocations)
}

func roleName(r graph.Role) string {
	switch r {
	case graph.RoleSystem:
		return "system"
	case graph.RoleUser:
		return "user"
	case graph.RoleAssistant:
		return "assistant"
	case graph.RoleTool:
		return "tool"
	default:
		return "unknown"
	}
}
