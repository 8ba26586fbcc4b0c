package graph

import (
	"fmt"
	"io"
)

// Info represents the graph structure for visualization
type Info struct {
	Nodes []NodeInfo
	Edges []EdgeInfo
}

// NodeInfo is one rendered node line
type NodeInfo struct {
	ID           string
	Type         NodeType
	Label        string
	ReferenceKey string
}

// EdgeInfo is one rendered edge line. Dangling marks an endpoint that no
// longer resolves to a node.
type EdgeInfo struct {
	From         string
	To           string
	SourceHandle string
	Dangling     bool
}

// GetGraphInfo collects the rendering view of the graph. Edge endpoints are
// shown by reference key when available, by ID otherwise.
func (g *Graph) GetGraphInfo() *Info {
	info := &Info{
		Nodes: make([]NodeInfo, 0, len(g.nodes)),
		Edges: make([]EdgeInfo, 0, len(g.edges)),
	}

	for _, n := range g.nodes {
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:           n.ID,
			Type:         n.Type,
			Label:        n.Label(),
			ReferenceKey: n.ReferenceKey(),
		})
	}

	for _, e := range g.edges {
		from, fromOK := g.displayName(e.Source)
		to, toOK := g.displayName(e.Target)
		info.Edges = append(info.Edges, EdgeInfo{
			From:         from,
			To:           to,
			SourceHandle: e.SourceHandle,
			Dangling:     !fromOK || !toOK,
		})
	}

	return info
}

func (g *Graph) displayName(id string) (string, bool) {
	n := g.Node(id)
	if n == nil {
		return id, false
	}
	if key := n.ReferenceKey(); key != "" {
		return key, true
	}
	return id, true
}

// PrintGraph renders the graph structure as text.
func (g *Graph) PrintGraph(w io.Writer) {
	info := g.GetGraphInfo()

	fmt.Fprintln(w, "Graph Structure:")
	fmt.Fprintln(w, "Nodes:")
	for _, n := range info.Nodes {
		marker := "-"
		if n.Type == TypeStart {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s %q (%s)\n", marker, n.Type, n.Label, n.ReferenceKey)
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, e := range info.Edges {
		switch {
		case e.Dangling:
			fmt.Fprintf(w, "  %s --> %s  (dangling)\n", e.From, e.To)
		case e.SourceHandle != "":
			fmt.Fprintf(w, "  %s --[%s]--> %s\n", e.From, e.SourceHandle, e.To)
		default:
			fmt.Fprintf(w, "  %s --> %s\n", e.From, e.To)
		}
	}
}
