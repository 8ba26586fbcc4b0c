package run

// Status represents the execution state of a workflow run or a single node.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// statusFromWire maps engine result strings onto Status. Engines report
// "succeeded"; locally that is a completed node. Anything unrecognized is
// treated as a failure rather than invented success.
func statusFromWire(s string) Status {
	switch s {
	case "succeeded":
		return StatusCompleted
	case "failed":
		return StatusFailed
	default:
		return StatusFailed
	}
}
