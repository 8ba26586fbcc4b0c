// Package validate checks workflow graphs for structural and semantic
// problems. The graph model deliberately allows broken intermediate states
// while the user edits; this package is where they get named. Checks never
// stop at the first finding and their output order is stable: passes run
// in a fixed sequence and report in node/edge insertion order within each
// pass.
package validate

import (
	"fmt"

	"github.com/tgohq/flowgraph/internal/traverse"
	"github.com/tgohq/flowgraph/pkg/graph"
)

// Check runs Validate and wraps the findings in a Result.
func Check(g *graph.Graph) Result {
	errs := Validate(g)
	if errs == nil {
		errs = []Error{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Validate runs, in order: start/end cardinality, dangling edges,
// reachability from the start, reachability to an end, cycle detection,
// and per-type required fields. All findings are collected.
func Validate(g *graph.Graph) []Error {
	nodes := g.Nodes()
	edges := g.Edges()

	var errs []Error
	errs = append(errs, checkCardinality(nodes)...)
	errs = append(errs, checkDanglingEdges(g, edges)...)
	errs = append(errs, checkReachability(nodes, edges)...)
	errs = append(errs, checkDeadEnds(nodes, edges)...)
	errs = append(errs, checkCycles(nodes, edges)...)
	errs = append(errs, checkRequiredFields(nodes)...)
	return errs
}

func checkCardinality(nodes []*graph.Node) []Error {
	var starts, ends []*graph.Node
	for _, n := range nodes {
		switch n.Type {
		case graph.TypeStart:
			starts = append(starts, n)
		case graph.TypeEnd:
			ends = append(ends, n)
		}
	}

	var errs []Error
	if len(starts) == 0 {
		errs = append(errs, Error{
			Code:    CodeMissingStartNode,
			Message: "workflow must contain a start node",
		})
	}
	// The first start stays authoritative; every surplus one is flagged so
	// the editor can highlight exactly the nodes to remove.
	if len(starts) > 1 {
		for _, n := range starts[1:] {
			errs = append(errs, Error{
				Code:    CodeMultipleStartNodes,
				Message: fmt.Sprintf("workflow must contain exactly one start node, found extra %q", displayName(n)),
				NodeID:  n.ID,
			})
		}
	}
	if len(ends) == 0 {
		errs = append(errs, Error{
			Code:    CodeMissingEndNode,
			Message: "workflow must contain at least one end node",
		})
	}
	return errs
}

func checkDanglingEdges(g *graph.Graph, edges []*graph.Edge) []Error {
	var errs []Error
	for _, e := range edges {
		if g.Node(e.Source) == nil {
			errs = append(errs, Error{
				Code:    CodeDanglingEdge,
				Message: fmt.Sprintf("edge references missing source node %q", e.Source),
				EdgeID:  e.ID,
			})
		}
		if g.Node(e.Target) == nil {
			errs = append(errs, Error{
				Code:    CodeDanglingEdge,
				Message: fmt.Sprintf("edge references missing target node %q", e.Target),
				EdgeID:  e.ID,
			})
		}
	}
	return errs
}

func checkReachability(nodes []*graph.Node, edges []*graph.Edge) []Error {
	seeds := idsOfType(nodes, graph.TypeStart)
	if len(seeds) == 0 {
		// Already reported as MISSING_START_NODE; flagging every node as
		// unreachable on top of that is noise.
		return nil
	}
	reachable := traverse.ReachableFrom(nodeIDs(nodes), arcs(edges), seeds)

	var errs []Error
	for _, n := range nodes {
		if !reachable[n.ID] {
			errs = append(errs, Error{
				Code:    CodeUnreachableNode,
				Message: fmt.Sprintf("node %q is not reachable from the start node", displayName(n)),
				NodeID:  n.ID,
			})
		}
	}
	return errs
}

func checkDeadEnds(nodes []*graph.Node, edges []*graph.Edge) []Error {
	seeds := idsOfType(nodes, graph.TypeEnd)
	if len(seeds) == 0 {
		return nil
	}
	canFinish := traverse.ReachableTo(nodeIDs(nodes), arcs(edges), seeds)

	var errs []Error
	for _, n := range nodes {
		if !canFinish[n.ID] {
			errs = append(errs, Error{
				Code:    CodeDeadEndNode,
				Message: fmt.Sprintf("node %q cannot reach any end node", displayName(n)),
				NodeID:  n.ID,
			})
		}
	}
	return errs
}

func checkCycles(nodes []*graph.Node, edges []*graph.Edge) []Error {
	members := traverse.CycleMembers(nodeIDs(nodes), arcs(edges))

	var errs []Error
	for _, id := range members {
		n := findNode(nodes, id)
		errs = append(errs, Error{
			Code:    CodeCircularDependency,
			Message: fmt.Sprintf("node %q is part of a circular dependency", displayName(n)),
			NodeID:  id,
		})
	}
	return errs
}

func checkRequiredFields(nodes []*graph.Node) []Error {
	var errs []Error
	for _, n := range nodes {
		errs = append(errs, requiredFields(n)...)
	}
	return errs
}

// requiredFields dispatches over the closed data catalog. Extending the
// catalog without extending this switch is a compile-time hole, so keep
// the cases exhaustive.
func requiredFields(n *graph.Node) []Error {
	missing := func(field string) Error {
		return Error{
			Code:    CodeMissingRequiredField,
			Message: fmt.Sprintf("%s node %q is missing %s", n.Type, displayName(n), field),
			NodeID:  n.ID,
		}
	}

	var errs []Error
	switch d := n.Data.(type) {
	case *graph.StartData:
		// input_variables may be empty; a start node is always complete.
	case *graph.EndData:
		switch d.OutputType {
		case graph.OutputVariable:
			if d.OutputVariable == "" {
				errs = append(errs, missing("output_variable"))
			}
		case graph.OutputTemplate:
			if d.OutputTemplate == "" {
				errs = append(errs, missing("output_template"))
			}
		case graph.OutputStructured:
			if len(d.OutputStructure) == 0 {
				errs = append(errs, missing("output_structure"))
			}
		default:
			errs = append(errs, missing("output_type"))
		}
	case *graph.LLMData:
		if d.UserPrompt == "" {
			errs = append(errs, missing("user_prompt"))
		}
	case *graph.AgentData:
		if d.AgentID == "" {
			errs = append(errs, missing("agent_id"))
		}
	case *graph.ToolData:
		if d.ToolID == "" {
			errs = append(errs, missing("tool_id"))
		}
	case *graph.APIData:
		if d.URL == "" {
			errs = append(errs, missing("url"))
		}
	case *graph.ConditionData:
		switch d.ConditionType {
		case graph.ConditionExpression:
			if d.Expression == "" {
				errs = append(errs, missing("expression"))
			}
		case graph.ConditionVariable:
			if d.Variable == "" {
				errs = append(errs, missing("variable"))
			}
			if d.Operator == "" {
				errs = append(errs, missing("operator"))
			}
		case graph.ConditionLLM:
			if d.LLMPrompt == "" {
				errs = append(errs, missing("llm_prompt"))
			}
		default:
			errs = append(errs, missing("condition_type"))
		}
	case *graph.ClassifierData:
		if d.InputVariable == "" {
			errs = append(errs, missing("input_variable"))
		}
		if len(d.Categories) == 0 {
			errs = append(errs, missing("categories"))
		}
	case *graph.ParallelData:
		if d.Branches < 2 {
			errs = append(errs, Error{
				Code:    CodeMissingRequiredField,
				Message: fmt.Sprintf("parallel node %q must declare at least 2 branches", displayName(n)),
				NodeID:  n.ID,
			})
		}
	case nil:
		errs = append(errs, Error{
			Code:    CodeMissingRequiredField,
			Message: fmt.Sprintf("%s node %q has no data", n.Type, n.ID),
			NodeID:  n.ID,
		})
	}
	return errs
}

func displayName(n *graph.Node) string {
	if n == nil {
		return ""
	}
	if label := n.Label(); label != "" {
		return label
	}
	if key := n.ReferenceKey(); key != "" {
		return key
	}
	return n.ID
}

func nodeIDs(nodes []*graph.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func idsOfType(nodes []*graph.Node, typ graph.NodeType) []string {
	var ids []string
	for _, n := range nodes {
		if n.Type == typ {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func arcs(edges []*graph.Edge) []traverse.Arc {
	out := make([]traverse.Arc, 0, len(edges))
	for _, e := range edges {
		out = append(out, traverse.Arc{From: e.Source, To: e.Target})
	}
	return out
}

func findNode(nodes []*graph.Node, id string) *graph.Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
