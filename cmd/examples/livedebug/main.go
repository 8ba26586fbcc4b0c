package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tgohq/flowgraph/pkg/graph"
	"github.com/tgohq/flowgraph/pkg/run"
	"github.com/tgohq/flowgraph/pkg/session"
)

// emit writes one SSE frame the way a workflow backend would.
func emit(w io.Writer, name, runID string, data any) {
	e, err := run.NewEvent(name, runID, data)
	if err != nil {
		log.Fatalf("Failed to build %s event: %v", name, err)
	}
	if err := run.WriteSSE(w, e); err != nil {
		log.Fatalf("Failed to write %s event: %v", name, err)
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := session.New(session.WithLogger(logger))

	// The workflow under observation
	start, err := s.AddNode(graph.TypeStart, graph.Position{X: 0, Y: 0}, &graph.StartData{
		BaseData: graph.BaseData{Label: "Ticket In"},
	})
	if err != nil {
		log.Fatalf("Failed to add start node: %v", err)
	}
	agent, err := s.AddNode(graph.TypeAgent, graph.Position{X: 220, Y: 0}, &graph.AgentData{
		BaseData: graph.BaseData{Label: "Support Agent"},
		AgentID:  "agent-7",
	})
	if err != nil {
		log.Fatalf("Failed to add agent node: %v", err)
	}
	done, err := s.AddNode(graph.TypeEnd, graph.Position{X: 440, Y: 0}, nil)
	if err != nil {
		log.Fatalf("Failed to add end node: %v", err)
	}
	if _, err := s.Connect(start.ID, agent.ID, "", ""); err != nil {
		log.Fatalf("Failed to connect start: %v", err)
	}
	if _, err := s.Connect(agent.ID, done.ID, "", ""); err != nil {
		log.Fatalf("Failed to connect agent: %v", err)
	}

	// A run that finishes cleanly
	runID := uuid.NewString()
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		emit(pw, run.EventWorkflowStarted, runID, run.WorkflowStartedData{
			ID: runID, WorkflowID: "ticket-triage",
			Inputs: map[string]any{"subject": "refund"},
		})
		emit(pw, run.EventNodeStarted, runID, run.NodeStartedData{
			NodeID: start.ID, NodeType: "start", Title: "Ticket In", Index: 0,
		})
		emit(pw, run.EventNodeFinished, runID, run.NodeFinishedData{
			NodeID: start.ID, NodeType: "start", Status: "succeeded", ElapsedTime: 2,
		})
		time.Sleep(30 * time.Millisecond)
		emit(pw, run.EventNodeStarted, runID, run.NodeStartedData{
			NodeID: agent.ID, NodeType: "agent", Title: "Support Agent", Index: 1,
		})
		emit(pw, run.EventNodeFinished, runID, run.NodeFinishedData{
			NodeID: agent.ID, NodeType: "agent", Status: "succeeded",
			Outputs: map[string]any{"reply": "Refund issued."}, ElapsedTime: 84,
		})
		emit(pw, run.EventWorkflowFinished, runID, run.WorkflowFinishedData{
			Status: "succeeded", Outputs: map[string]any{"reply": "Refund issued."},
			TotalSteps: 2, ElapsedTime: 120,
		})
	}()
	if err := s.Run(context.Background(), runID, pr); err != nil {
		log.Fatalf("Failed to consume run stream: %v", err)
	}
	s.FprintRun(os.Stdout)

	// A run that stalls mid-node until the user gives up
	fmt.Println()
	runID = uuid.NewString()
	pr, pw = io.Pipe()
	go func() {
		defer pw.Close()
		emit(pw, run.EventWorkflowStarted, runID, run.WorkflowStartedData{ID: runID, WorkflowID: "ticket-triage"})
		emit(pw, run.EventNodeStarted, runID, run.NodeStartedData{
			NodeID: agent.ID, NodeType: "agent", Title: "Support Agent", Index: 0,
		})
		// The backend goes quiet here.
	}()
	if err := s.Run(context.Background(), runID, pr); err != nil {
		log.Fatalf("Failed to consume run stream: %v", err)
	}

	s.CancelRun()

	// A late acknowledgment from the backend changes nothing.
	var late bytes.Buffer
	emit(&late, run.EventNodeFinished, runID, run.NodeFinishedData{
		NodeID: agent.ID, NodeType: "agent", Status: "succeeded", ElapsedTime: 900,
	})
	if err := run.Consume(context.Background(), &late, s.Tracker().OnEvent); err != nil {
		log.Fatalf("Failed to consume late events: %v", err)
	}

	s.FprintRun(os.Stdout)
}
