package validate

// Code identifies one class of validation finding.
type Code string

const (
	CodeMissingStartNode     Code = "MISSING_START_NODE"
	CodeMultipleStartNodes   Code = "MULTIPLE_START_NODES"
	CodeMissingEndNode       Code = "MISSING_END_NODE"
	CodeDanglingEdge         Code = "DANGLING_EDGE"
	CodeUnreachableNode      Code = "UNREACHABLE_NODE"
	CodeDeadEndNode          Code = "DEAD_END_NODE"
	CodeCircularDependency   Code = "CIRCULAR_DEPENDENCY"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
)

// Error is one validation finding. Findings are data, not failures: a
// check run always returns the full list so the editor can annotate every
// offending node and edge at once. NodeID and EdgeID bind the finding to
// the graph element it concerns, when there is one.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"node_id,omitempty"`
	EdgeID  string `json:"edge_id,omitempty"`
}

// Error implements the error interface for logging convenience.
func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Result pairs the findings with a summary flag, matching the shape the
// editor consumes.
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Error `json:"errors"`
}
