package graph

// Postorder returns a depth-first postorder walk seeded at the given start
// nodes: every node appears strictly after all nodes it depends on. A
// virtual root is synthesized ahead of multiple start nodes so a single
// walk covers all of them without revisiting shared descendants. With no
// start nodes, the walk is seeded at every node. Children are visited in
// key order, so the result is deterministic.
//
// Start nodes are resolved against the graph by key; unknown nodes are
// skipped (they may have been removed by an external-node bypass).
func (g *Graph) Postorder(start []*Node) []*Node {
	roots := make([]*Node, 0, len(start))
	if len(start) == 0 {
		roots = g.Nodes()
	} else {
		for _, n := range start {
			if resolved, ok := g.nodes[n.key]; ok {
				roots = append(roots, resolved)
			}
		}
	}

	visited := make(map[string]bool)
	var order []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n.key] {
			return
		}
		visited[n.key] = true
		for _, succ := range g.Successors(n) {
			visit(succ)
		}
		order = append(order, n)
	}
	// The shared visited set plays the role of the virtual root: each
	// start node's subtree is walked once, skipping anything an earlier
	// start already covered.
	for _, root := range roots {
		visit(root)
	}
	return order
}

// BuildableInOrder returns the postorder walk restricted to buildable
// nodes. External nodes participate in the ordering but are never yielded.
func (g *Graph) BuildableInOrder(start []*Node) []*Node {
	var out []*Node
	for _, n := range g.Postorder(start) {
		if n.Buildable() {
			out = append(out, n)
		}
	}
	return out
}
