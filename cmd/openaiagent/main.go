// Command openaiagent drives the ReAct loop against a real OpenAI model
// and a real HTTP tool, rather than the scripted stand-ins cmd/reactagent
// uses to run offline. Requires OPENAI_API_KEY; OPENAI_MODEL optionally
// overrides the default model name.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/emit"
	"github.com/ravikrr/agentgraph/graph/model/openai"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/graph/tool"
	"github.com/ravikrr/agentgraph/react"
)

func main() {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY must be set to run this example")
	}

	query := "What's at https://example.com? Fetch it and summarize the response status."
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	chatModel := openai.NewChatModel(apiKey, os.Getenv("OPENAI_MODEL"))

	httpTool := tool.NewHTTPTool()
	modelNode := &react.ModelNode{
		Model:        chatModel,
		SystemPrompt: "You are a helpful assistant with access to an HTTP client tool.",
		Tools: []react.ToolDescriptor{
			{
				Name:        httpTool.Name(),
				Description: "Make an HTTP GET or POST request and return status, headers, and body.",
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"method": map[string]any{"type": "string", "description": "GET or POST, defaults to GET"},
						"url":    map[string]any{"type": "string", "description": "target URL"},
						"body":   map[string]any{"type": "string", "description": "request body for POST"},
					},
					"required": []string{"url"},
				},
				Tool: httpTool,
			},
		},
		MaxInvocations: 6,
		Cost:           graph.NewCostTracker("openaiagent-demo", "USD"),
		ModelName:      os.Getenv("OPENAI_MODEL"),
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
		graph.WithCostTracker[graph.MessagesState](modelNode.Cost),
	)

	initial := graph.MessagesState{
		Messages: []graph.Message{graph.NewUserMessage(query)},
	}

	final, err := ex.Run(context.Background(), "openaiagent-demo", initial)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	fmt.Println()
	fmt.Println("=== conversation ===")
	for _, m := range final.Messages {
		fmt.Printf("[%s] %s\n", roleName(m.Role), m.Text)
	}
	fmt.Printf("\nmodel invocations: %d, total cost: $%.4f\n", final.ModelInvocations, modelNode.Cost.TotalCost())
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
