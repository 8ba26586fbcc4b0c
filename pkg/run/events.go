package run

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Event names of the execution stream. The stream may carry other event
// kinds (keepalives, engine chatter); the tracker folds these four and
// ignores the rest.
const (
	EventWorkflowStarted  = "workflow_started"
	EventNodeStarted      = "node_started"
	EventNodeFinished     = "node_finished"
	EventWorkflowFinished = "workflow_finished"
)

// Event is one streamed execution event. Data stays raw until the event
// name selects a payload shape.
type Event struct {
	Event         string          `json:"event"`
	WorkflowRunID string          `json:"workflow_run_id"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// WorkflowStartedData is the payload of a workflow_started event.
type WorkflowStartedData struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

// NodeStartedData is the payload of a node_started event.
type NodeStartedData struct {
	ID       string `json:"id"`
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
	Title    string `json:"title,omitempty"`
	Index    int    `json:"index"`
}

// NodeFinishedData is the payload of a node_finished event. ElapsedTime is
// in milliseconds.
type NodeFinishedData struct {
	ID          string         `json:"id"`
	NodeID      string         `json:"node_id"`
	NodeType    string         `json:"node_type"`
	Status      string         `json:"status"`
	Inputs      map[string]any `json:"inputs,omitempty"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	ElapsedTime float64        `json:"elapsed_time"`
}

// WorkflowFinishedData is the payload of a workflow_finished event.
type WorkflowFinishedData struct {
	Status      string         `json:"status"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	TotalSteps  int            `json:"total_steps"`
	ElapsedTime float64        `json:"elapsed_time"`
}

// WorkflowStarted decodes the event payload as workflow_started data.
func (e *Event) WorkflowStarted() (*WorkflowStartedData, error) {
	var d WorkflowStartedData
	if err := decodeData(e, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// NodeStarted decodes the event payload as node_started data.
func (e *Event) NodeStarted() (*NodeStartedData, error) {
	var d NodeStartedData
	if err := decodeData(e, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// NodeFinished decodes the event payload as node_finished data.
func (e *Event) NodeFinished() (*NodeFinishedData, error) {
	var d NodeFinishedData
	if err := decodeData(e, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// WorkflowFinished decodes the event payload as workflow_finished data.
func (e *Event) WorkflowFinished() (*WorkflowFinishedData, error) {
	var d WorkflowFinishedData
	if err := decodeData(e, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeData(e *Event, v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return errors.Wrapf(err, "decode %s data", e.Event)
	}
	return nil
}

// NewEvent builds an event with a marshaled payload. Demo drivers and tests
// use it to synthesize streams; the tracker itself only consumes.
func NewEvent(name, runID string, data any) (*Event, error) {
	e := &Event{Event: name, WorkflowRunID: runID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s data", name)
		}
		e.Data = raw
	}
	return e, nil
}
