package graph

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// duplicateOffset shifts a duplicated node so it does not cover the source.
const duplicateOffset = 40

// Graph owns the node and edge collections and their mutation primitives.
// It never validates: invalid intermediate states (an agent node with no
// agent_id, an edge whose endpoint was removed upstream) are expected while
// the user is editing. Insertion order is preserved so reference-key
// assignment and validation output stay deterministic.
//
// A Graph is not safe for concurrent use; it belongs to a single editor
// session at a time.
type Graph struct {
	nodes []*Node
	edges []*Edge

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// AddNode creates a node with a fresh ID and appends it. A nil data yields
// the type's creation defaults; a non-nil data must belong to typ and is
// deep-copied on the way in. A missing reference key is assigned here.
func (g *Graph) AddNode(typ NodeType, pos Position, data NodeData) (*Node, error) {
	if data == nil {
		d, err := DefaultData(typ)
		if err != nil {
			return nil, err
		}
		data = d
	} else {
		if data.Type() != typ {
			return nil, errors.Wrapf(ErrTypeMismatch, "data is %q, node is %q", data.Type(), typ)
		}
		data = data.Clone()
	}

	n := &Node{
		ID:       uuid.New().String(),
		Type:     typ,
		Position: pos,
		Data:     data,
	}
	AssignReferenceKey(n, g)

	g.nodes = append(g.nodes, n)
	g.nodeIndex[n.ID] = len(g.nodes) - 1
	return n, nil
}

// RemoveNode deletes the node and every edge touching it, so no dangling
// edge is ever left behind by this operation.
func (g *Graph) RemoveNode(id string) error {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %q", id)
	}
	g.nodes = append(g.nodes[:idx], g.nodes[idx+1:]...)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	g.reindex()
	return nil
}

// Connect creates an edge between two nodes. Self-loops are rejected.
// Connecting an identical (source, sourceHandle, target, targetHandle)
// tuple twice is idempotent: the existing edge is returned unchanged.
// Endpoint existence is deliberately not checked here; dangling references
// are surfaced by validation, and the model must tolerate them while a
// document is mid-edit.
func (g *Graph) Connect(source, target, sourceHandle, targetHandle string) (*Edge, error) {
	if source == target {
		return nil, errors.Wrapf(ErrSelfLoop, "connect %q -> %q", source, target)
	}
	for _, e := range g.edges {
		if e.Source == source && e.Target == target &&
			e.SourceHandle == sourceHandle && e.TargetHandle == targetHandle {
			return e, nil
		}
	}

	e := &Edge{
		ID:           uuid.New().String(),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Type:         DefaultEdgeType,
	}
	g.edges = append(g.edges, e)
	g.edgeIndex[e.ID] = len(g.edges) - 1
	return e, nil
}

// RemoveEdge deletes a single edge.
func (g *Graph) RemoveEdge(id string) error {
	idx, ok := g.edgeIndex[id]
	if !ok {
		return errors.Wrapf(ErrEdgeNotFound, "edge %q", id)
	}
	g.edges = append(g.edges[:idx], g.edges[idx+1:]...)
	g.reindex()
	return nil
}

// UpdateNodeData shallow-merges patch into the node's data: top-level keys
// replace their counterparts, everything else is kept. The merge runs
// through the JSON representation so the data stays a well-formed variant;
// a patch that cannot decode back into the node's type fails without
// touching the node. The type discriminator itself cannot be changed.
func (g *Graph) UpdateNodeData(id string, patch map[string]any) error {
	n := g.Node(id)
	if n == nil {
		return errors.Wrapf(ErrNodeNotFound, "node %q", id)
	}
	if len(patch) == 0 {
		return nil
	}
	if raw, ok := patch["type"]; ok {
		if s, _ := raw.(string); NodeType(s) != n.Type {
			return errors.Wrapf(ErrTypeMismatch, "node %q: data type cannot change", id)
		}
	}

	current, err := MarshalNodeData(n.Data)
	if err != nil {
		return errors.Wrapf(err, "node %q", id)
	}
	var fields map[string]any
	if err := json.Unmarshal(current, &fields); err != nil {
		return errors.Wrapf(err, "node %q", id)
	}
	for k, v := range patch {
		fields[k] = v
	}
	fields["type"] = string(n.Type)

	merged, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "node %q: encode patch", id)
	}
	data, err := unmarshalNodeDataAs(n.Type, merged)
	if err != nil {
		return errors.Wrapf(err, "node %q: patch does not fit %q", id, n.Type)
	}
	n.Data = data
	return nil
}

// MoveNode repositions a node. Position is passthrough data, but moves are
// discrete user actions and callers commit them to history like any edit.
func (g *Graph) MoveNode(id string, pos Position) error {
	n := g.Node(id)
	if n == nil {
		return errors.Wrapf(ErrNodeNotFound, "node %q", id)
	}
	n.Position = pos
	return nil
}

// DuplicateNode deep-copies a node under a fresh ID, offsets its position,
// and assigns it a new reference key. The source node's key is never reused:
// references elsewhere keep addressing the original.
func (g *Graph) DuplicateNode(id string) (*Node, error) {
	src := g.Node(id)
	if src == nil {
		return nil, errors.Wrapf(ErrNodeNotFound, "node %q", id)
	}

	data := src.Data.Clone()
	base := data.Base()
	base.ReferenceKey = ""
	if base.Label != "" {
		base.Label += " (Copy)"
	}

	n := &Node{
		ID:   uuid.New().String(),
		Type: src.Type,
		Position: Position{
			X: src.Position.X + duplicateOffset,
			Y: src.Position.Y + duplicateOffset,
		},
		Data: data,
	}
	AssignReferenceKey(n, g)

	g.nodes = append(g.nodes, n)
	g.nodeIndex[n.ID] = len(g.nodes) - 1
	return n, nil
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return nil
	}
	return g.nodes[idx]
}

// Edge returns the edge with the given ID, or nil.
func (g *Graph) Edge(id string) *Edge {
	idx, ok := g.edgeIndex[id]
	if !ok {
		return nil
	}
	return g.edges[idx]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Clone returns a deep copy sharing nothing with the original.
func (g *Graph) Clone() *Graph {
	c := New()
	c.nodes = make([]*Node, 0, len(g.nodes))
	c.edges = make([]*Edge, 0, len(g.edges))
	for i, n := range g.nodes {
		c.nodes = append(c.nodes, n.Clone())
		c.nodeIndex[n.ID] = i
	}
	for i, e := range g.edges {
		c.edges = append(c.edges, e.Clone())
		c.edgeIndex[e.ID] = i
	}
	return c
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.edgeIndex[e.ID] = i
	}
}
