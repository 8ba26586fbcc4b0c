package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tgohq/flowgraph/pkg/graph"
	"github.com/tgohq/flowgraph/pkg/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := session.New(session.WithLogger(logger), session.WithDebug())

	// Build a ticket triage workflow
	start, err := s.AddNode(graph.TypeStart, graph.Position{X: 0, Y: 80}, &graph.StartData{
		BaseData: graph.BaseData{Label: "Ticket In"},
		InputVariables: []graph.InputVariable{
			{Name: "subject", Type: "string"},
			{Name: "body", Type: "string"},
		},
	})
	if err != nil {
		log.Fatalf("Failed to add start node: %v", err)
	}

	classifier, err := s.AddNode(graph.TypeClassifier, graph.Position{X: 220, Y: 80}, &graph.ClassifierData{
		BaseData:      graph.BaseData{Label: "Route Ticket"},
		InputVariable: "body",
		Categories: []graph.Category{
			{ID: "billing", Name: "Billing"},
			{ID: "spam", Name: "Spam"},
		},
	})
	if err != nil {
		log.Fatalf("Failed to add classifier node: %v", err)
	}

	answer, err := s.AddNode(graph.TypeLLM, graph.Position{X: 440, Y: 0}, nil)
	if err != nil {
		log.Fatalf("Failed to add llm node: %v", err)
	}

	done, err := s.AddNode(graph.TypeEnd, graph.Position{X: 660, Y: 80}, nil)
	if err != nil {
		log.Fatalf("Failed to add end node: %v", err)
	}

	// Wire the branches
	if _, err := s.Connect(start.ID, classifier.ID, "", ""); err != nil {
		log.Fatalf("Failed to connect start: %v", err)
	}
	if _, err := s.Connect(classifier.ID, answer.ID, "billing", ""); err != nil {
		log.Fatalf("Failed to connect billing branch: %v", err)
	}
	if _, err := s.Connect(classifier.ID, done.ID, "spam", ""); err != nil {
		log.Fatalf("Failed to connect spam branch: %v", err)
	}
	if _, err := s.Connect(answer.ID, done.ID, "", ""); err != nil {
		log.Fatalf("Failed to connect answer: %v", err)
	}

	// The structure is sound but two prompts are still blank
	res := s.Validate()
	fmt.Printf("valid=%v, %d findings\n", res.Valid, len(res.Errors))
	for _, e := range res.Errors {
		fmt.Printf("  %s: %s\n", e.Code, e.Message)
	}

	// Fill them in and re-check
	err = s.UpdateNodeData(answer.ID, map[string]any{
		"label":       "Draft Reply",
		"user_prompt": "Draft a reply to: {{start_1.body}}",
	})
	if err != nil {
		log.Fatalf("Failed to update llm node: %v", err)
	}
	err = s.UpdateNodeData(done.ID, map[string]any{
		"output_template": "{{llm_1.text}}",
	})
	if err != nil {
		log.Fatalf("Failed to update end node: %v", err)
	}
	fmt.Printf("valid=%v after filling prompts\n", s.Validate().Valid)

	// Every edit above is one undo step
	for s.CanUndo() {
		s.Undo()
	}
	fmt.Printf("after undo all: %d nodes\n", len(s.Graph().Nodes()))
	for s.CanRedo() {
		s.Redo()
	}
	fmt.Printf("after redo all: %d nodes, valid=%v\n", len(s.Graph().Nodes()), s.Validate().Valid)

	// Variables other nodes can reference
	fmt.Println("variables:")
	for _, nv := range s.Variables() {
		for _, v := range nv.Outputs {
			fmt.Printf("  {{%s.%s}} (%s)\n", nv.ReferenceKey, v.Name, v.Type)
		}
	}

	fmt.Println()
	s.Graph().PrintGraph(os.Stdout)

	raw, err := s.Save()
	if err != nil {
		log.Fatalf("Failed to save graph: %v", err)
	}
	fmt.Printf("\nsaved %d bytes\n", len(raw))
}
