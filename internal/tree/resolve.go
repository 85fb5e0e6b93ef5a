package tree

import (
	"context"
	"sort"

	"github.com/packsmith/packsmith/internal/channel"
	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/graph"
	"github.com/packsmith/packsmith/internal/pkgver"
	"github.com/packsmith/packsmith/internal/variant"
)

// resolveRemoteDeps links the transitive dependencies of every external
// node into the graph by querying the package channels. It never resolves
// a node that already has a build command: local production always wins
// over remote lookup for the same package name.
//
// Resolution is sequential per variant: each step's channel priority
// depends on the graph state left by prior steps.
func resolveRemoteDeps(ctx context.Context, g *graph.Graph, q channel.Querier, globalChannels []string, v variant.Variant) error {
	logger := ctxlog.FromContext(ctx)

	var work []*graph.Node
	for _, n := range g.Nodes() {
		if !n.Buildable() {
			work = append(work, n)
		}
	}

	seen := make(map[string]struct{})
	for len(work) > 0 {
		node := work[len(work)-1]
		work = work[:len(work)-1]

		// Channel priority: the node's own channels, then channels of
		// build commands among its ancestors, then the global list.
		var ancestorChannels []string
		for _, ancestor := range g.Ancestors(node) {
			if ancestor.Buildable() {
				ancestorChannels = append(ancestorChannels, ancestor.Command.Channels...)
			}
		}
		channels := mergeOrdered(mergeOrdered(node.Channels, ancestorChannels), globalChannels)

		for _, pkg := range node.Packages {
			name := pkgver.StripQualifier(pkg)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			info, found, err := q.LatestPackage(ctx, channels, pkg)
			if err != nil {
				outstanding := outstandingPackages(work, node)
				return errs.Wrap(errs.KindResolve, err, "resolving remote dependencies").
					WithVariant(v.Key()).WithSubjects(outstanding...)
			}
			if !found {
				// Virtual package; nothing to link.
				continue
			}
			logger.Debug("Resolved remote package.", "package", name, "version", info.Version, "deps", len(info.Dependencies))

			for _, dep := range info.Dependencies {
				depName := pkgver.StripQualifier(dep)
				if match := findPackageNode(g, depName); match != nil {
					g.AddEdge(node, match)
					continue
				}
				newDep := graph.NewNode([]string{dep}, nil, nil)
				g.AddEdge(node, newDep)
				work = append(work, newDep)
			}
		}
	}
	return nil
}

// outstandingPackages names the packages still unresolved when a query
// fails, for the error report.
func outstandingPackages(work []*graph.Node, current *graph.Node) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(n *graph.Node) {
		for _, pkg := range n.Packages {
			name := pkgver.StripQualifier(pkg)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	add(current)
	for _, n := range work {
		add(n)
	}
	sort.Strings(names)
	return names
}
