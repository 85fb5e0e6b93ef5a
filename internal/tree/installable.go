package tree

import (
	"sort"
	"strings"

	"github.com/packsmith/packsmith/internal/graph"
	"github.com/packsmith/packsmith/internal/pkgver"
)

// InstallablePackages reduces a graph's runtime dependencies plus the
// external dependencies into one deduplicated, version-qualifier-aware
// package list. With independent set, only dependencies with no buildable
// descendant are kept (the minimal bootstrap set); otherwise each
// node's own output artifacts are included too, so the produced manifest
// installs as a coherent whole.
//
// The result is sorted by ascending string length. That ordering is kept
// for output stability only; it carries no semantic meaning.
func InstallablePackages(g *graph.Graph, externalDeps []string, start []*graph.Node, independent bool) []string {
	var result []string

	for _, n := range g.BuildableInOrder(start) {
		cmd := n.Command
		if !cmd.RuntimePackage {
			continue
		}
		var runDeps []string
		if independent {
			runDeps = independentRunDeps(g, n)
		} else {
			runDeps = cmd.RunDeps
		}
		for _, dep := range runDeps {
			result = mergeDep(result, pkgver.Generalize(dep))
		}
		if !independent {
			for _, output := range cmd.OutputFiles {
				result = mergeDep(result, pkgver.Generalize(output))
			}
		}
	}

	for _, dep := range externalDeps {
		if independent {
			node, ok := g.Node(graph.NewNode([]string{dep}, nil, nil).Key())
			if !ok || !g.IsIndependent(node) {
				continue
			}
		}
		result = mergeDep(result, pkgver.Generalize(dep))
	}

	sort.Slice(result, func(i, j int) bool {
		if len(result[i]) != len(result[j]) {
			return len(result[i]) < len(result[j])
		}
		return result[i] < result[j]
	})
	return result
}

// mergeDep applies the pairwise merge rule against the accumulating set:
// exact match is skipped; a qualified entry replaces an unqualified entry
// of the same base name; a base name already represented in any form is
// skipped; anything else is added.
func mergeDep(set []string, dep string) []string {
	for _, existing := range set {
		if existing == dep {
			return set
		}
	}
	name := pkgver.StripQualifier(dep)
	if len(strings.Fields(dep)) > 1 {
		for i, existing := range set {
			if existing == name {
				set[i] = dep
				return set
			}
		}
	}
	for _, existing := range set {
		if pkgver.StripQualifier(existing) == name {
			return set
		}
	}
	return append(set, dep)
}

// independentRunDeps returns a node's run dependencies whose satisfying
// nodes have no buildable descendants. The satisfying node may itself be
// buildable: a locally built leaf still counts as independent. The node's
// own outputs are excluded.
func independentRunDeps(g *graph.Graph, n *graph.Node) []string {
	own := make(map[string]struct{}, len(n.Packages))
	for _, pkg := range n.Packages {
		own[pkgver.StripQualifier(pkg)] = struct{}{}
	}

	var deps []string
	for _, dep := range n.Command.RunDeps {
		name := pkgver.StripQualifier(dep)
		if _, ok := own[name]; ok {
			continue
		}
		for _, succ := range g.Successors(n) {
			if succ.HasPackage(name) {
				if g.IsIndependent(succ) {
					deps = append(deps, dep)
				}
				break
			}
		}
	}
	return deps
}
