package run

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

//-----------------------//
// Decoder               //
//-----------------------//

func TestDecoderReadsFrames(t *testing.T) {
	t.Parallel()

	stream := strings.Join([]string{
		": keepalive",
		"",
		"event: workflow_started",
		`data: {"workflow_run_id": "run-1", "data": {"id": "run-1", "workflow_id": "wf-1"}}`,
		"",
		"event: node_started",
		`data: {"workflow_run_id": "run-1", "data": {"node_id": "n1", "node_type": "llm", "index": 0}}`,
		"",
	}, "\n")

	d := NewDecoder(strings.NewReader(stream))

	e, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventWorkflowStarted, e.Event)
	require.Equal(t, "run-1", e.WorkflowRunID)
	started, err := e.WorkflowStarted()
	require.NoError(t, err)
	require.Equal(t, "wf-1", started.WorkflowID)

	e, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, EventNodeStarted, e.Event)

	_, err = d.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecoderHandlesCRLF(t *testing.T) {
	t.Parallel()

	stream := "event: workflow_finished\r\n" +
		"data: {\"workflow_run_id\": \"run-1\", \"data\": {\"status\": \"succeeded\"}}\r\n\r\n"

	e, err := NewDecoder(strings.NewReader(stream)).Next()
	require.NoError(t, err)
	require.Equal(t, EventWorkflowFinished, e.Event)
}

func TestDecoderPayloadEventFieldWins(t *testing.T) {
	t.Parallel()

	// A self-describing payload needs no event: line, and an embedded name
	// overrides a stale buffered one.
	stream := strings.Join([]string{
		`data: {"event": "node_started", "workflow_run_id": "run-1", "data": {"node_id": "n1"}}`,
		"event: message",
		`data: {"event": "node_finished", "workflow_run_id": "run-1", "data": {"node_id": "n1", "status": "succeeded"}}`,
	}, "\n")

	d := NewDecoder(strings.NewReader(stream))

	e, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventNodeStarted, e.Event)

	e, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, EventNodeFinished, e.Event)
}

func TestDecoderEmptyDataLine(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader("event: ping\ndata:\n"))
	e, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "ping", e.Event)
	require.Empty(t, e.Data)
}

func TestDecoderRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader("event: node_started\ndata: {broken\n"))
	_, err := d.Next()
	require.Error(t, err)
	require.Contains(t, err.Error(), "node_started")
}

func TestWriteSSERoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	want := mustEvent(t, EventNodeFinished, "run-1", NodeFinishedData{
		NodeID: "n1", Status: "succeeded", Outputs: map[string]any{"text": "hi"}, ElapsedTime: 5,
	})
	require.NoError(t, WriteSSE(&buf, want))

	got, err := NewDecoder(&buf).Next()
	require.NoError(t, err)
	require.Equal(t, want.Event, got.Event)
	require.Equal(t, want.WorkflowRunID, got.WorkflowRunID)
	d, err := got.NodeFinished()
	require.NoError(t, err)
	require.Equal(t, "n1", d.NodeID)
	require.Equal(t, map[string]any{"text": "hi"}, d.Outputs)
}

//-----------------------//
// Consume               //
//-----------------------//

func TestConsumeDrivesTracker(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	events := []*Event{
		mustEvent(t, EventWorkflowStarted, "run-1", WorkflowStartedData{ID: "run-1", WorkflowID: "wf-1"}),
		startedEvent(t, "run-1", "n1", "start", "Start", 0),
		finishedEvent(t, "run-1", "n1", "succeeded", 3),
		startedEvent(t, "run-1", "n2", "llm", "Draft", 1),
		mustEvent(t, EventWorkflowFinished, "run-1", WorkflowFinishedData{
			Status: "succeeded", TotalSteps: 2, ElapsedTime: 40,
		}),
	}
	for _, e := range events {
		require.NoError(t, WriteSSE(&buf, e))
	}

	tr := NewTracker()
	tr.Start("run-1")
	require.NoError(t, Consume(context.Background(), &buf, tr.OnEvent))

	snap := tr.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status)
	require.Equal(t, StatusCompleted, snap.Nodes["n1"].Status)
	require.Equal(t, StatusCancelled, snap.Nodes["n2"].Status, "n2 never finished before the run ended")
}

func TestConsumeStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSSE(&buf, mustEvent(t, "ping", "run-1", nil)))
	require.NoError(t, WriteSSE(&buf, mustEvent(t, "ping", "run-1", nil)))

	calls := 0
	err := Consume(context.Background(), &buf, func(*Event) error {
		calls++
		return io.ErrUnexpectedEOF
	})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 1, calls)
}

func TestConsumeHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Consume(ctx, strings.NewReader("event: ping\ndata: {}\n"), func(*Event) error {
		t.Fatal("callback must not run after cancellation")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConsumeEmptyStream(t *testing.T) {
	t.Parallel()
	require.NoError(t, Consume(context.Background(), strings.NewReader(""), func(*Event) error {
		t.Fatal("no events expected")
		return nil
	}))
}
