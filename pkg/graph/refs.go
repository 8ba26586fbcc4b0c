package graph

import "fmt"

// AssignReferenceKey gives the node a stable "{type}_{n}" key unless it
// already has one. Keys are never reassigned once set: prompts and templates
// elsewhere address nodes by key, and renumbering would silently break them.
// On collision (manual edits, duplicated documents) n is incremented until
// the key is free. The result is deterministic for a fixed node order.
func AssignReferenceKey(n *Node, g *Graph) string {
	if n.Data == nil {
		return ""
	}
	base := n.Data.Base()
	if base.ReferenceKey != "" {
		return base.ReferenceKey
	}

	taken := make(map[string]bool, len(g.nodes))
	count := 0
	for _, other := range g.nodes {
		if other == n {
			continue
		}
		if other.Type == n.Type {
			count++
		}
		if key := other.ReferenceKey(); key != "" {
			taken[key] = true
		}
	}

	seq := count + 1
	key := fmt.Sprintf("%s_%d", n.Type, seq)
	for taken[key] {
		seq++
		key = fmt.Sprintf("%s_%d", n.Type, seq)
	}
	base.ReferenceKey = key
	return key
}

// EnsureReferenceKeys assigns keys to every node missing one, in insertion
// order. Loading a hand-written document is the usual way keys go missing.
func EnsureReferenceKeys(g *Graph) {
	for _, n := range g.nodes {
		AssignReferenceKey(n, g)
	}
}

// NodeByReferenceKey returns the node holding the given key, or nil.
func (g *Graph) NodeByReferenceKey(key string) *Node {
	if key == "" {
		return nil
	}
	for _, n := range g.nodes {
		if n.ReferenceKey() == key {
			return n
		}
	}
	return nil
}

// Variable describes one output a node exposes to downstream references.
type Variable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// NodeVariables lists the outputs one node offers, addressed through its
// reference key as {{reference_key.name}}.
type NodeVariables struct {
	NodeID       string     `json:"node_id"`
	ReferenceKey string     `json:"reference_key"`
	NodeType     NodeType   `json:"node_type"`
	NodeLabel    string     `json:"node_label"`
	Outputs      []Variable `json:"outputs"`
}

// Variables returns the per-node output catalog in insertion order. Nodes
// that expose nothing (end, condition, parallel) are omitted.
func Variables(g *Graph) []NodeVariables {
	var out []NodeVariables
	for _, n := range g.nodes {
		vars := nodeOutputs(n)
		if len(vars) == 0 {
			continue
		}
		out = append(out, NodeVariables{
			NodeID:       n.ID,
			ReferenceKey: n.ReferenceKey(),
			NodeType:     n.Type,
			NodeLabel:    n.Label(),
			Outputs:      vars,
		})
	}
	return out
}

func nodeOutputs(n *Node) []Variable {
	switch d := n.Data.(type) {
	case *StartData:
		vars := make([]Variable, 0, len(d.InputVariables))
		for _, v := range d.InputVariables {
			vars = append(vars, Variable{Name: v.Name, Type: v.Type, Description: v.Description})
		}
		return vars
	case *LLMData:
		return []Variable{{Name: "text", Type: "string", Description: "LLM output text"}}
	case *AgentData:
		return []Variable{{Name: "text", Type: "string", Description: "Agent output text"}}
	case *ToolData:
		return []Variable{{Name: "result", Type: "any", Description: "Tool execution result"}}
	case *APIData:
		return []Variable{
			{Name: "body", Type: "object", Description: "API response body"},
			{Name: "status_code", Type: "number", Description: "HTTP status code"},
			{Name: "headers", Type: "object", Description: "API response headers"},
		}
	case *ClassifierData:
		return []Variable{
			{Name: "category_id", Type: "string", Description: "Matched category ID"},
			{Name: "category_name", Type: "string", Description: "Matched category name"},
		}
	default:
		return nil
	}
}
