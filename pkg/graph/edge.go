package graph

// DefaultEdgeType is the rendering hint new edges carry. The canvas layer
// interprets it; this package only passes it through.
const DefaultEdgeType = "smoothstep"

// Edge is a directed connection between two nodes. SourceHandle
// distinguishes multiple outgoing branches of one node, such as a condition
// node's "true"/"false" exits or a classifier's per-category exits.
type Edge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	SourceHandle string         `json:"sourceHandle,omitempty"`
	TargetHandle string         `json:"targetHandle,omitempty"`
	Type         string         `json:"type,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Data = cloneAnyMap(e.Data)
	return &c
}
