// Command checkpointdemo runs a small 3-step workflow against a MemStore
// and demonstrates resuming a run from its latest checkpoint and branching
// a second line of history off an earlier, mid-run checkpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ravikrr/agentgraph/graph"
	"github.com/ravikrr/agentgraph/graph/emit"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/label"
)

// pipelineState is the workflow's state: a query moving through parse,
// process, and finalize stages.
type pipelineState struct {
	Query    string
	Result   string
	Step     int
	Complete bool
}

type pipelineUpdate struct {
	Result   string
	Step     int
	Complete bool
}

func reduce(prev pipelineState, delta pipelineUpdate) pipelineState {
	if delta.Result != "" {
		prev.Result = delta.Result
	}
	if delta.Step > 0 {
		prev.Step = delta.Step
	}
	if delta.Complete {
		prev.Complete = true
	}
	return prev
}

type stageKind string

var (
	parseLabel    = label.Intern(stageKind("checkpointdemo:parse"))
	processLabel  = label.Intern(stageKind("checkpointdemo:process"))
	finalizeLabel = label.Intern(stageKind("checkpointdemo:finalize"))
)

func buildGraph() (*graph.StateGraph[pipelineState, pipelineUpdate], error) {
	g := graph.NewGraph[pipelineState, pipelineUpdate]()

	g.RegisterNode(parseLabel, graph.NodeFunc[pipelineState, pipelineUpdate](func(ctx *graph.NodeContext, s pipelineState) (graph.NodeOutcome[pipelineUpdate], error) {
		fmt.Printf("[parse] query=%q\n", s.Query)
		return graph.NodeOutcome[pipelineUpdate]{
			Update: pipelineUpdate{Result: fmt.Sprintf("parsed: %s", s.Query), Step: 1},
		}, nil
	}))
	g.RegisterNode(processLabel, graph.NodeFunc[pipelineState, pipelineUpdate](func(ctx *graph.NodeContext, s pipelineState) (graph.NodeOutcome[pipelineUpdate], error) {
		fmt.Printf("[process] step=%d\n", s.Step)
		return graph.NodeOutcome[pipelineUpdate]{
			Update: pipelineUpdate{Result: s.Result + " -> processed", Step: 2},
		}, nil
	}))
	g.RegisterNode(finalizeLabel, graph.NodeFunc[pipelineState, pipelineUpdate](func(ctx *graph.NodeContext, s pipelineState) (graph.NodeOutcome[pipelineUpdate], error) {
		fmt.Printf("[finalize] step=%d\n", s.Step)
		return graph.NodeOutcome[pipelineUpdate]{
			Update: pipelineUpdate{Result: s.Result + " -> done", Step: 3, Complete: true},
		}, nil
	}))

	g.SetEntry(parseLabel)
	g.AddEdge(parseLabel, processLabel)
	g.AddEdge(processLabel, finalizeLabel)
	g.AddEdge(finalizeLabel, graph.Terminal)

	built, err := g.Build()
	if err != nil {
		return nil, err
	}
	return graph.NewStateGraph(built, reduce), nil
}

func main() {
	sg, err := buildGraph()
	if err != nil {
		log.Fatalf("build graph: %v", err)
	}

	st := store.NewMemStore[pipelineState]()
	ex := graph.NewExecutor[pipelineState, pipelineUpdate](sg,
		graph.WithStore[pipelineState](st),
		graph.WithEmitter[pipelineState](emit.NewLogEmitter(os.Stdout, false)),
	)

	ctx := context.Background()

	fmt.Println("=== running run-001 to completion ===")
	final, err := ex.Run(ctx, "run-001", pipelineState{Query: "what is the weather?"})
	if err != nil {
		log.Fatalf("run-001 failed: %v", err)
	}
	fmt.Printf("run-001 final state: %+v\n\n", final)

	checkpoints, err := st.List(ctx, "run-001", 0)
	if err != nil || len(checkpoints) == 0 {
		log.Fatalf("list checkpoints: %v", err)
	}
	// List returns newest-first; the step-1 snapshot is the oldest entry.
	afterParse := checkpoints[len(checkpoints)-1].ID
	fmt.Printf("checkpoint after parse: %s (step=%d)\n\n", afterParse, checkpoints[len(checkpoints)-1].Step)

	fmt.Println("=== resuming run-001 from its latest checkpoint ===")
	resumed, err := ex.Resume(ctx, "run-001")
	if err != nil {
		log.Fatalf("resume failed: %v", err)
	}
	fmt.Printf("resumed state (already complete, no-op): %+v\n\n", resumed)

	fmt.Println("=== branching off the post-parse checkpoint ===")
	branched, err := ex.ResumeFrom(ctx, afterParse)
	if err != nil {
		log.Fatalf("resume from checkpoint failed: %v", err)
	}
	fmt.Printf("branched run final state: %+v\n", branched)
}
