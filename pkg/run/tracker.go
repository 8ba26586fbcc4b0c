// Package run tracks the execution state of one workflow run as reported
// by a streamed event protocol. The tracker is a fold: events go in, an
// immutable snapshot comes out. It never talks to the engine and keeps its
// own copy of node identities, so a UI can render a run while the graph
// that produced it is being edited.
package run

import (
	"sync"
	"time"
)

// NodeExecution is the tracked state of one node within a run.
type NodeExecution struct {
	NodeID      string         `json:"node_id"`
	NodeType    string         `json:"node_type,omitempty"`
	Title       string         `json:"title,omitempty"`
	Index       int            `json:"index"`
	Status      Status         `json:"status"`
	Input       map[string]any `json:"input,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	DurationMS  float64        `json:"duration_ms"`
}

// Snapshot is a read-only copy of the tracker state. Order lists node IDs
// in first-seen order so renderings stay stable across calls.
type Snapshot struct {
	RunID       string                   `json:"run_id"`
	WorkflowID  string                   `json:"workflow_id,omitempty"`
	Status      Status                   `json:"status"`
	Inputs      map[string]any           `json:"inputs,omitempty"`
	Outputs     map[string]any           `json:"outputs,omitempty"`
	Error       string                   `json:"error,omitempty"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
	TotalSteps  int                      `json:"total_steps"`
	ElapsedMS   float64                  `json:"elapsed_ms"`
	Nodes       map[string]NodeExecution `json:"nodes"`
	Order       []string                 `json:"order"`
}

// Tracker folds execution events into per-run state. Editing and stream
// consumption legitimately run on different goroutines, so access is
// guarded; everything handed out is a copy.
//
// Events for a different run than the current one are dropped. Once the
// run is terminal (finished or locally cancelled) all further events for
// it are dropped too: cancellation is local-first, and a late
// node_finished must not resurrect a node the user already cancelled.
type Tracker struct {
	mu sync.RWMutex

	runID       string
	workflowID  string
	status      Status
	inputs      map[string]any
	outputs     map[string]any
	errMsg      string
	startedAt   time.Time
	completedAt time.Time
	totalSteps  int
	elapsedMS   float64

	nodes map[string]*NodeExecution
	order []string
}

// NewTracker returns a tracker with no run attached.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.reset("")
	return t
}

// Start resets all per-run state and begins tracking the given run.
func (t *Tracker) Start(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset(runID)
	t.status = StatusRunning
	t.startedAt = time.Now()
}

// Cancel marks the run and every running node cancelled. It is purely
// local: the UI flips immediately, whatever the engine acknowledges later.
// Safe to call repeatedly and after the run already ended.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return
	}
	now := time.Now()
	t.status = StatusCancelled
	t.completedAt = now
	t.cancelRunningNodes(now)
}

// OnEvent folds one streamed event into the run state. Unknown event names
// and events for other runs are ignored; an undecodable payload is the
// only error. Inconsistent but decodable events (an unknown node_id, a
// finish without a start) are absorbed by synthesizing records, since one
// odd event must not corrupt the view of an otherwise healthy run.
func (t *Tracker) OnEvent(e *Event) error {
	if e == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runID != "" && e.WorkflowRunID != "" && e.WorkflowRunID != t.runID {
		return nil
	}
	if t.status.Terminal() {
		return nil
	}

	switch e.Event {
	case EventWorkflowStarted:
		return t.onWorkflowStarted(e)
	case EventNodeStarted:
		return t.onNodeStarted(e)
	case EventNodeFinished:
		return t.onNodeFinished(e)
	case EventWorkflowFinished:
		return t.onWorkflowFinished(e)
	default:
		return nil
	}
}

func (t *Tracker) onWorkflowStarted(e *Event) error {
	d, err := e.WorkflowStarted()
	if err != nil {
		return err
	}
	if t.runID == "" {
		// Unsolicited run: adopt it.
		t.reset(e.WorkflowRunID)
	}
	t.status = StatusRunning
	t.startedAt = time.Now()
	t.workflowID = d.WorkflowID
	t.inputs = d.Inputs
	return nil
}

func (t *Tracker) onNodeStarted(e *Event) error {
	d, err := e.NodeStarted()
	if err != nil {
		return err
	}
	if d.NodeID == "" {
		return nil
	}
	// A repeated start for the same node replaces its record.
	if _, seen := t.nodes[d.NodeID]; !seen {
		t.order = append(t.order, d.NodeID)
	}
	t.nodes[d.NodeID] = &NodeExecution{
		NodeID:    d.NodeID,
		NodeType:  d.NodeType,
		Title:     d.Title,
		Index:     d.Index,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	return nil
}

func (t *Tracker) onNodeFinished(e *Event) error {
	d, err := e.NodeFinished()
	if err != nil {
		return err
	}
	if d.NodeID == "" {
		return nil
	}

	rec, ok := t.nodes[d.NodeID]
	if !ok {
		// The start event never arrived; synthesize the record so the
		// result is not lost.
		rec = &NodeExecution{
			NodeID:    d.NodeID,
			NodeType:  d.NodeType,
			Status:    StatusRunning,
			StartedAt: time.Now(),
		}
		t.nodes[d.NodeID] = rec
		t.order = append(t.order, d.NodeID)
	}
	if rec.Status == StatusCancelled {
		return nil
	}

	rec.Status = statusFromWire(d.Status)
	rec.Input = d.Inputs
	rec.Output = d.Outputs
	rec.Error = d.Error
	rec.CompletedAt = time.Now()
	rec.DurationMS = d.ElapsedTime
	if rec.NodeType == "" {
		rec.NodeType = d.NodeType
	}
	return nil
}

func (t *Tracker) onWorkflowFinished(e *Event) error {
	d, err := e.WorkflowFinished()
	if err != nil {
		return err
	}
	now := time.Now()
	t.status = statusFromWire(d.Status)
	t.outputs = d.Outputs
	t.errMsg = d.Error
	t.totalSteps = d.TotalSteps
	t.elapsedMS = d.ElapsedTime
	t.completedAt = now
	// The engine stopped emitting; whatever still looks running never got
	// a finish and is cancelled, not completed.
	t.cancelRunningNodes(now)
	return nil
}

// Snapshot returns a copy of the current run state.
func (t *Tracker) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nodes := make(map[string]NodeExecution, len(t.nodes))
	for id, rec := range t.nodes {
		c := *rec
		c.Input = cloneMap(rec.Input)
		c.Output = cloneMap(rec.Output)
		nodes[id] = c
	}
	order := make([]string, len(t.order))
	copy(order, t.order)

	return &Snapshot{
		RunID:       t.runID,
		WorkflowID:  t.workflowID,
		Status:      t.status,
		Inputs:      cloneMap(t.inputs),
		Outputs:     cloneMap(t.outputs),
		Error:       t.errMsg,
		StartedAt:   t.startedAt,
		CompletedAt: t.completedAt,
		TotalSteps:  t.totalSteps,
		ElapsedMS:   t.elapsedMS,
		Nodes:       nodes,
		Order:       order,
	}
}

// Status returns the overall run status.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// RunID returns the run currently tracked, or "".
func (t *Tracker) RunID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runID
}

func (t *Tracker) reset(runID string) {
	t.runID = runID
	t.workflowID = ""
	t.status = StatusPending
	t.inputs = nil
	t.outputs = nil
	t.errMsg = ""
	t.startedAt = time.Time{}
	t.completedAt = time.Time{}
	t.totalSteps = 0
	t.elapsedMS = 0
	t.nodes = make(map[string]*NodeExecution)
	t.order = nil
}

func (t *Tracker) cancelRunningNodes(now time.Time) {
	for _, rec := range t.nodes {
		if rec.Status == StatusRunning {
			rec.Status = StatusCancelled
			rec.CompletedAt = now
		}
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
