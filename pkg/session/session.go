// Package session composes the editing core into the object a UI layer
// owns: one graph, its undo history, validation on demand, and a tracker
// for the run currently streaming in. The session has no goroutines and no
// store of its own; callers drive it the way a UI event loop would.
package session

import (
	"context"
	"io"
	"log/slog"

	"github.com/tgohq/flowgraph/pkg/graph"
	"github.com/tgohq/flowgraph/pkg/history"
	"github.com/tgohq/flowgraph/pkg/run"
	"github.com/tgohq/flowgraph/pkg/validate"
)

// Option configures a Session before first use.
type Option func(*Session)

// WithGraph adopts an existing graph instead of starting empty.
func WithGraph(g *graph.Graph) Option {
	return func(s *Session) {
		if g != nil {
			s.g = g
		}
	}
}

// WithHistoryLimit caps the undo window.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.historyLimit = n
	}
}

// WithLogger routes session logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebug enables debug-level tracing of edits and run events.
func WithDebug() Option {
	return func(s *Session) {
		s.debug = true
	}
}

// Session is one editing session over one workflow graph.
type Session struct {
	g       *graph.Graph
	history *history.Manager
	tracker *run.Tracker

	logger       *slog.Logger
	debug        bool
	historyLimit int
}

// New creates a session, empty unless WithGraph is given.
func New(opts ...Option) *Session {
	s := &Session{
		g:      graph.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var hopts []history.Option
	if s.historyLimit > 0 {
		hopts = append(hopts, history.WithLimit(s.historyLimit))
	}
	s.history = history.New(s.g, hopts...)
	s.tracker = run.NewTracker()
	return s
}

//------------------//
// Editing          //
//------------------//

// AddNode creates a node and commits the edit. See graph.Graph.AddNode.
func (s *Session) AddNode(typ graph.NodeType, pos graph.Position, data graph.NodeData) (*graph.Node, error) {
	n, err := s.g.AddNode(typ, pos, data)
	if err != nil {
		return nil, err
	}
	s.commit("add node", "node_id", n.ID, "type", string(typ))
	return n, nil
}

// RemoveNode deletes a node and its edges and commits the edit.
func (s *Session) RemoveNode(id string) error {
	if err := s.g.RemoveNode(id); err != nil {
		return err
	}
	s.commit("remove node", "node_id", id)
	return nil
}

// Connect creates an edge and commits the edit. Reconnecting an identical
// tuple returns the existing edge without a new history entry.
func (s *Session) Connect(source, target, sourceHandle, targetHandle string) (*graph.Edge, error) {
	before := len(s.g.Edges())
	e, err := s.g.Connect(source, target, sourceHandle, targetHandle)
	if err != nil {
		return nil, err
	}
	if len(s.g.Edges()) != before {
		s.commit("connect", "edge_id", e.ID, "source", source, "target", target)
	}
	return e, nil
}

// RemoveEdge deletes an edge and commits the edit.
func (s *Session) RemoveEdge(id string) error {
	if err := s.g.RemoveEdge(id); err != nil {
		return err
	}
	s.commit("remove edge", "edge_id", id)
	return nil
}

// UpdateNodeData merges a patch into a node's data and commits the edit.
func (s *Session) UpdateNodeData(id string, patch map[string]any) error {
	if err := s.g.UpdateNodeData(id, patch); err != nil {
		return err
	}
	s.commit("update node", "node_id", id)
	return nil
}

// MoveNode repositions a node and commits the edit. Callers should send
// the settled position, not every intermediate drag sample.
func (s *Session) MoveNode(id string, pos graph.Position) error {
	if err := s.g.MoveNode(id, pos); err != nil {
		return err
	}
	s.commit("move node", "node_id", id)
	return nil
}

// DuplicateNode copies a node and commits the edit.
func (s *Session) DuplicateNode(id string) (*graph.Node, error) {
	n, err := s.g.DuplicateNode(id)
	if err != nil {
		return nil, err
	}
	s.commit("duplicate node", "source_id", id, "node_id", n.ID)
	return n, nil
}

//------------------//
// History          //
//------------------//

// Undo swaps the live graph for the previous snapshot. False at the floor.
func (s *Session) Undo() bool {
	snap := s.history.Undo()
	if snap == nil {
		return false
	}
	s.g = snap.Graph
	s.debugf("undo")
	return true
}

// Redo swaps the live graph for the next snapshot. False at the ceiling.
func (s *Session) Redo() bool {
	snap := s.history.Redo()
	if snap == nil {
		return false
	}
	s.g = snap.Graph
	s.debugf("redo")
	return true
}

// CanUndo reports whether Undo would do anything.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

//------------------//
// Inspection       //
//------------------//

// Graph returns the live graph. Mutating it directly bypasses history;
// use the session's edit operations for undoable changes.
func (s *Session) Graph() *graph.Graph { return s.g }

// Validate checks the current graph.
func (s *Session) Validate() validate.Result {
	return validate.Check(s.g)
}

// Variables returns the per-node output catalog of the current graph.
func (s *Session) Variables() []graph.NodeVariables {
	return graph.Variables(s.g)
}

// Save encodes the current graph as a persistence document.
func (s *Session) Save() ([]byte, error) {
	return graph.MarshalDocument(s.g)
}

// Load replaces the graph with a decoded document and resets history to
// it. Nodes missing reference keys (hand-written documents) get them
// assigned here.
func (s *Session) Load(raw []byte) error {
	g, err := graph.UnmarshalDocument(raw)
	if err != nil {
		return err
	}
	graph.EnsureReferenceKeys(g)
	s.g = g
	s.history.Reset(g)
	s.debugf("load", "nodes", len(g.Nodes()), "edges", len(g.Edges()))
	return nil
}

//------------------//
// Execution        //
//------------------//

// Tracker returns the execution tracker for the session's runs.
func (s *Session) Tracker() *run.Tracker { return s.tracker }

// Run starts tracking runID and drains an SSE event stream into the
// tracker until the stream ends, ctx is done, or a frame fails to decode.
// Tracker state keeps whatever the consumed events produced either way.
func (s *Session) Run(ctx context.Context, runID string, stream io.Reader) error {
	s.tracker.Start(runID)
	s.debugf("run started", "run_id", runID)
	return run.Consume(ctx, stream, func(e *run.Event) error {
		if err := s.tracker.OnEvent(e); err != nil {
			return err
		}
		s.debugf("run event", "event", e.Event)
		return nil
	})
}

// CancelRun marks the current run cancelled locally. Idempotent.
func (s *Session) CancelRun() {
	s.tracker.Cancel()
	s.debugf("run cancelled", "run_id", s.tracker.RunID())
}

func (s *Session) commit(msg string, args ...any) {
	s.history.Commit(s.g)
	s.debugf(msg, args...)
}

func (s *Session) debugf(msg string, args ...any) {
	if s.debug {
		s.logger.Debug(msg, args...)
	}
}
