package graph

import (
	"sort"
	"strings"
)

// SimpleCycles enumerates all simple cycles in the graph. Each cycle is
// reported exactly once, rooted at its smallest node key, as the ordered
// list of member nodes.
func (g *Graph) SimpleCycles() [][]*Node {
	keys := make([]string, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var cycles [][]*Node
	for _, root := range keys {
		// Only walk nodes >= root, so every cycle is discovered once,
		// rooted at its lexicographically smallest member.
		onPath := map[string]bool{root: true}
		path := []string{root}

		var visit func(key string)
		visit = func(key string) {
			for _, next := range g.sortedSuccKeys(key) {
				if next < root {
					continue
				}
				if next == root {
					cycle := make([]*Node, len(path))
					for i, k := range path {
						cycle[i] = g.nodes[k]
					}
					cycles = append(cycles, cycle)
					continue
				}
				if onPath[next] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				visit(next)
				path = path[:len(path)-1]
				delete(onPath, next)
			}
		}
		visit(root)
	}
	return cycles
}

// FatalCycles returns the simple cycles containing at least one buildable
// node. Pure external-dependency cycles can occur in upstream metadata and
// are tolerated since they never need to be built.
func (g *Graph) FatalCycles() [][]*Node {
	var fatal [][]*Node
	for _, cycle := range g.SimpleCycles() {
		for _, n := range cycle {
			if n.Buildable() {
				fatal = append(fatal, cycle)
				break
			}
		}
	}
	return fatal
}

// RenderCycle renders a cycle as an ordered chain closing back to its
// start: "a -> b -> c -> a".
func RenderCycle(cycle []*Node) string {
	labels := make([]string, 0, len(cycle)+1)
	for _, n := range cycle {
		labels = append(labels, n.Label())
	}
	if len(cycle) > 0 {
		labels = append(labels, cycle[0].Label())
	}
	return strings.Join(labels, " -> ")
}

func (g *Graph) sortedSuccKeys(key string) []string {
	succs := g.out[key]
	out := make([]string, 0, len(succs))
	for k := range succs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
