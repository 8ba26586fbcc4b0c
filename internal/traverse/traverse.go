// Package traverse implements the graph walks validation is built on:
// breadth-first reachability in both directions and Kahn cycle detection.
// Inputs are plain ID lists so the package stays free of model types.
// Arcs with an endpoint outside the node list are skipped; dangling edges
// are someone else's diagnostic, not a traversal concern.
package traverse

// Arc is one directed connection between two nodes by ID.
type Arc struct {
	From string
	To   string
}

// ReachableFrom returns every node reachable from the seeds following arc
// direction, seeds included. Seeds not present in order are ignored.
func ReachableFrom(order []string, arcs []Arc, seeds []string) map[string]bool {
	return bfs(order, arcs, seeds, false)
}

// ReachableTo returns every node from which at least one seed can be
// reached, i.e. reachability over the reversed arcs.
func ReachableTo(order []string, arcs []Arc, seeds []string) map[string]bool {
	return bfs(order, arcs, seeds, true)
}

// CycleMembers runs Kahn's algorithm and returns the nodes whose in-degree
// never drained, in the given order. A node trapped behind a cycle counts:
// its predecessor is never peeled, so it can never run either. Returns nil
// when the graph is acyclic.
func CycleMembers(order []string, arcs []Arc) []string {
	nodes := nodeSet(order)
	adj := adjacency(nodes, arcs, false)

	indeg := make(map[string]int, len(order))
	for _, a := range arcs {
		if nodes[a.From] && nodes[a.To] {
			indeg[a.To]++
		}
	}

	queue := make([]string, 0, len(order))
	for _, id := range order {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	removed := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		removed++
		for _, next := range adj[cur] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if removed == len(order) {
		return nil
	}

	var members []string
	for _, id := range order {
		if indeg[id] > 0 {
			members = append(members, id)
		}
	}
	return members
}

func bfs(order []string, arcs []Arc, seeds []string, reversed bool) map[string]bool {
	nodes := nodeSet(order)
	adj := adjacency(nodes, arcs, reversed)

	seen := make(map[string]bool, len(order))
	queue := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if nodes[s] && !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func adjacency(nodes map[string]bool, arcs []Arc, reversed bool) map[string][]string {
	adj := make(map[string][]string, len(nodes))
	for _, a := range arcs {
		if !nodes[a.From] || !nodes[a.To] {
			continue
		}
		from, to := a.From, a.To
		if reversed {
			from, to = to, from
		}
		adj[from] = append(adj[from], to)
	}
	return adj
}

func nodeSet(order []string) map[string]bool {
	set := make(map[string]bool, len(order))
	for _, id := range order {
		set[id] = true
	}
	return set
}
