package graph

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// NodeType identifies a node's place in the catalog. The catalog is closed:
// the validator dispatches exhaustively over it, so introducing a new type
// means extending the data variants and the rule set together.
type NodeType string

const (
	TypeStart      NodeType = "start"
	TypeEnd        NodeType = "end"
	TypeLLM        NodeType = "llm"
	TypeAgent      NodeType = "agent"
	TypeTool       NodeType = "tool"
	TypeAPI        NodeType = "api"
	TypeCondition  NodeType = "condition"
	TypeClassifier NodeType = "classifier"
	TypeParallel   NodeType = "parallel"
)

// Valid reports whether t is part of the node catalog.
func (t NodeType) Valid() bool {
	switch t {
	case TypeStart, TypeEnd, TypeLLM, TypeAgent, TypeTool, TypeAPI,
		TypeCondition, TypeClassifier, TypeParallel:
		return true
	default:
		return false
	}
}

// Position is the node's canvas placement. It is opaque to this package and
// passed through untouched.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single vertex of the workflow graph.
type Node struct {
	ID       string
	Type     NodeType
	Position Position
	Data     NodeData
}

// Label returns the node's display name.
func (n *Node) Label() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.Base().Label
}

// ReferenceKey returns the node's stable reference key, or "" when unset.
func (n *Node) ReferenceKey() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.Base().ReferenceKey
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Data != nil {
		c.Data = n.Data.Clone()
	}
	return &c
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON writes the node in its wire shape, with the data object
// carrying its own type discriminator.
func (n *Node) MarshalJSON() ([]byte, error) {
	data, err := MarshalNodeData(n.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "node %q", n.ID)
	}
	return json.Marshal(nodeJSON{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     data,
	})
}

// UnmarshalJSON reads the wire shape. The node's type selects the data
// variant; when the node-level type is absent, the data object's own
// discriminator is used. A conflict between the two is an error.
func (n *Node) UnmarshalJSON(raw []byte) error {
	var nj nodeJSON
	if err := json.Unmarshal(raw, &nj); err != nil {
		return err
	}

	typ := nj.Type
	if len(nj.Data) > 0 {
		embedded, err := peekDataType(nj.Data)
		if err != nil {
			return errors.Wrapf(err, "node %q", nj.ID)
		}
		switch {
		case typ == "":
			typ = embedded
		case embedded != "" && embedded != typ:
			return errors.Wrapf(ErrTypeMismatch, "node %q: type %q, data type %q", nj.ID, typ, embedded)
		}
	}
	if !typ.Valid() {
		return errors.Wrapf(ErrUnknownNodeType, "node %q: %q", nj.ID, typ)
	}

	data, err := unmarshalNodeDataAs(typ, nj.Data)
	if err != nil {
		return errors.Wrapf(err, "node %q", nj.ID)
	}

	n.ID = nj.ID
	n.Type = typ
	n.Position = nj.Position
	n.Data = data
	return nil
}
