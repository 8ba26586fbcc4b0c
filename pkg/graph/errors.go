package graph

import "errors"

var (
	// ErrNodeNotFound is returned when referencing a non-existent node
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when referencing a non-existent edge
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDuplicateNode is returned when loading a document that repeats a node ID
	ErrDuplicateNode = errors.New("node with this ID already exists")

	// ErrDuplicateEdge is returned when loading a document that repeats an edge ID
	ErrDuplicateEdge = errors.New("edge with this ID already exists")

	// ErrSelfLoop is returned when connecting a node to itself
	ErrSelfLoop = errors.New("edge cannot connect a node to itself")

	// ErrUnknownNodeType is returned for a type outside the node catalog
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrTypeMismatch is returned when node data does not belong to the node's type
	ErrTypeMismatch = errors.New("node data type mismatch")
)
