package tree

import (
	"github.com/packsmith/packsmith/internal/graph"
	"github.com/packsmith/packsmith/internal/pkgver"
)

// linkLocalEdges adds an edge from every buildable node to the node
// satisfying each of its declared dependencies, matching on the
// qualifier-stripped name. Unmatched dependencies get a fresh external
// node holding exactly that dependency string. The outer loop runs over a
// snapshot taken before linking begins, since linking adds nodes.
// Re-linking an existing edge is a no-op.
func linkLocalEdges(g *graph.Graph) {
	for _, n := range g.Snapshot() {
		if !n.Buildable() {
			continue
		}
		for _, dep := range n.Command.AllDeps() {
			name := pkgver.StripQualifier(dep)
			if match := findPackageNode(g, name); match != nil {
				if match.Key() != n.Key() {
					g.AddEdge(n, match)
				}
				continue
			}
			g.AddEdge(n, graph.NewNode([]string{dep}, nil, nil))
		}
	}
}

// findPackageNode searches the live node set for a node whose package set
// contains the qualifier-stripped name. When several match, the smallest
// key wins, keeping linking deterministic.
func findPackageNode(g *graph.Graph, name string) *graph.Node {
	for _, candidate := range g.Nodes() {
		if candidate.HasPackage(name) {
			return candidate
		}
	}
	return nil
}
