package graph

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// document is the persistence shape: plain JSON, no cycles, no functions.
type document struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// MarshalDocument encodes the graph for storage. UnmarshalDocument restores
// it exactly, up to JSON field ordering.
func MarshalDocument(g *Graph) ([]byte, error) {
	doc := document{
		Nodes: g.nodes,
		Edges: g.edges,
	}
	if doc.Nodes == nil {
		doc.Nodes = []*Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []*Edge{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode graph document")
	}
	return raw, nil
}

// UnmarshalDocument decodes a stored graph. Node and edge order is
// preserved. Duplicate IDs are rejected; an edge without an ID gets a fresh
// one (hand-written documents omit them).
func UnmarshalDocument(raw []byte) (*Graph, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode graph document")
	}

	g := New()
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, errors.New("decode graph document: node without id")
		}
		if _, exists := g.nodeIndex[n.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateNode, "node %q", n.ID)
		}
		g.nodes = append(g.nodes, n)
		g.nodeIndex[n.ID] = len(g.nodes) - 1
	}
	for _, e := range doc.Edges {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if _, exists := g.edgeIndex[e.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateEdge, "edge %q", e.ID)
		}
		g.edges = append(g.edges, e)
		g.edgeIndex[e.ID] = len(g.edges) - 1
	}
	return g, nil
}
