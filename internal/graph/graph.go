package graph

import "sort"

// Graph is a directed graph of dependency nodes. An edge A -> B means
// "A depends on B": B must be available before A can build.
type Graph struct {
	nodes map[string]*Node
	out   map[string]map[string]struct{}
	in    map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string]map[string]struct{}),
		in:    make(map[string]map[string]struct{}),
	}
}

// AddNode inserts a node, unifying it with any existing node of the same
// key. Channels of unified nodes are merged, preserving priority order.
// The graph's representative for the key is returned.
func (g *Graph) AddNode(n *Node) *Node {
	if existing, ok := g.nodes[n.key]; ok {
		existing.Channels = mergeOrdered(existing.Channels, n.Channels)
		return existing
	}
	g.nodes[n.key] = n
	g.out[n.key] = make(map[string]struct{})
	g.in[n.key] = make(map[string]struct{})
	return n
}

// AddEdge adds the dependency edge from -> to, inserting either endpoint
// if missing. Re-adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to *Node) {
	from = g.AddNode(from)
	to = g.AddNode(to)
	g.out[from.key][to.key] = struct{}{}
	g.in[to.key][from.key] = struct{}{}
}

// HasEdge reports whether the dependency edge from -> to exists.
func (g *Graph) HasEdge(from, to *Node) bool {
	succ, ok := g.out[from.key]
	if !ok {
		return false
	}
	_, ok = succ[to.key]
	return ok
}

// Node returns the graph's node for the given key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, succ := range g.out {
		total += len(succ)
	}
	return total
}

// Nodes returns all nodes in key order.
func (g *Graph) Nodes() []*Node {
	return g.sortedByKey(g.nodes)
}

// Snapshot returns a stable copy of the current node list. Passes that add
// nodes while iterating (edge linking, remote resolution) iterate over a
// snapshot instead of the live node set.
func (g *Graph) Snapshot() []*Node {
	return g.Nodes()
}

// Successors returns the nodes the given node depends on, in key order.
func (g *Graph) Successors(n *Node) []*Node {
	return g.neighborSet(g.out, n)
}

// Predecessors returns the nodes that depend on the given node, in key order.
func (g *Graph) Predecessors(n *Node) []*Node {
	return g.neighborSet(g.in, n)
}

// Descendants returns every node reachable from n via dependency edges.
func (g *Graph) Descendants(n *Node) []*Node {
	return g.reachable(g.out, n)
}

// Ancestors returns every node from which n is reachable.
func (g *Graph) Ancestors(n *Node) []*Node {
	return g.reachable(g.in, n)
}

// InDegreeZero returns the nodes nothing depends on, in key order. These
// are the traversal roots of a variant's graph.
func (g *Graph) InDegreeZero() []*Node {
	roots := make(map[string]*Node)
	for key, preds := range g.in {
		if len(preds) == 0 {
			roots[key] = g.nodes[key]
		}
	}
	return g.sortedByKey(roots)
}

// IsIndependent reports whether the node has no buildable descendant, i.e.
// its dependency requirement is satisfiable without building anything
// locally.
func (g *Graph) IsIndependent(n *Node) bool {
	for _, desc := range g.Descendants(n) {
		if desc.Buildable() {
			return false
		}
	}
	return true
}

// RemoveNode deletes the node and every edge incident to it.
func (g *Graph) RemoveNode(n *Node) {
	key := n.key
	if _, ok := g.nodes[key]; !ok {
		return
	}
	for succ := range g.out[key] {
		delete(g.in[succ], key)
	}
	for pred := range g.in[key] {
		delete(g.out[pred], key)
	}
	delete(g.out, key)
	delete(g.in, key)
	delete(g.nodes, key)
}

// Compose merges other into g: the node sets are unioned (nodes equal
// under node identity are unified) and the edge sets are unioned.
func (g *Graph) Compose(other *Graph) {
	for _, n := range other.Nodes() {
		g.AddNode(n)
	}
	for fromKey, succs := range other.out {
		for toKey := range succs {
			g.AddEdge(other.nodes[fromKey], other.nodes[toKey])
		}
	}
}

// BypassExternal removes every external node, rewiring each of its
// predecessors directly to each of its successors. Transitive ordering
// between buildable nodes is preserved. The build tree applies this
// exactly once, after all variants are composed.
func (g *Graph) BypassExternal() {
	for _, n := range g.Snapshot() {
		if n.Buildable() {
			continue
		}
		preds := g.Predecessors(n)
		succs := g.Successors(n)
		for _, pred := range preds {
			for _, succ := range succs {
				if pred.key == succ.key {
					continue
				}
				g.AddEdge(pred, succ)
			}
		}
		g.RemoveNode(n)
	}
}

func (g *Graph) neighborSet(adj map[string]map[string]struct{}, n *Node) []*Node {
	set, ok := adj[n.key]
	if !ok {
		return nil
	}
	nodes := make(map[string]*Node, len(set))
	for key := range set {
		nodes[key] = g.nodes[key]
	}
	return g.sortedByKey(nodes)
}

func (g *Graph) reachable(adj map[string]map[string]struct{}, start *Node) []*Node {
	visited := make(map[string]*Node)
	stack := []string{start.key}
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adj[key] {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = g.nodes[next]
			stack = append(stack, next)
		}
	}
	delete(visited, start.key)
	return g.sortedByKey(visited)
}

func (g *Graph) sortedByKey(nodes map[string]*Node) []*Node {
	keys := make([]string, 0, len(nodes))
	for key := range nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*Node, 0, len(keys))
	for _, key := range keys {
		out = append(out, nodes[key])
	}
	return out
}

func mergeOrdered(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
