// Package tree builds and owns the composed multi-variant dependency
// graph: it expands variants, constructs one graph per variant from the
// environment descriptors, links local and remote dependencies, rejects
// fatal cycles, and exposes dependency-respecting traversal plus the
// per-variant installable package sets.
package tree

import (
	"context"
	"strings"
	"time"

	"github.com/packsmith/packsmith/internal/buildcmd"
	"github.com/packsmith/packsmith/internal/buildenv"
	"github.com/packsmith/packsmith/internal/channel"
	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/graph"
	"github.com/packsmith/packsmith/internal/pool"
	"github.com/packsmith/packsmith/internal/recipe"
	"github.com/packsmith/packsmith/internal/repo"
	"github.com/packsmith/packsmith/internal/variant"
)

// Validator checks one variant's (graph, external dependencies, start
// nodes) triple after construction. Validation of all variants runs in
// parallel on the pool.
type Validator interface {
	Validate(ctx context.Context, variantKey string, g *graph.Graph, externalDeps []string, start []*graph.Node) error
}

// NopValidator accepts everything.
type NopValidator struct{}

// Validate implements Validator.
func (NopValidator) Validate(context.Context, string, *graph.Graph, []string, []*graph.Node) error {
	return nil
}

// Options configure a build tree.
type Options struct {
	// EnvFiles are the environment descriptor files to build from.
	EnvFiles []string
	// Axes are the requested variant axis values.
	Axes variant.Axes

	// RepositoryFolder is where feedstock repositories are materialized.
	RepositoryFolder string
	// GitLocation is the base URL bare feedstock names expand against.
	GitLocation string
	// GitTag, when set, overrides every feedstock's pinned tag.
	GitTag string

	// Channels are the globally configured package channels, highest
	// priority first.
	Channels []string
	// Packages optionally restricts start nodes to recipes producing
	// these package names.
	Packages []string

	Loader    *buildenv.Loader
	Renderer  recipe.Renderer
	Provider  repo.Provider
	Querier   channel.Querier
	Validator Validator
	Pool      *pool.Pool
}

func (o *Options) fillDefaults() {
	if o.Loader == nil {
		o.Loader = buildenv.NewLoader()
	}
	if o.Renderer == nil {
		o.Renderer = recipe.NewHCLRenderer()
	}
	if o.Provider == nil {
		o.Provider = repo.NewGitProvider()
	}
	if o.Querier == nil {
		o.Querier = channel.NewHTTPQuerier(30 * time.Second)
	}
	if o.Validator == nil {
		o.Validator = NopValidator{}
	}
	if o.Pool == nil {
		o.Pool = pool.New(0)
	}
}

// BuildTree owns the composed graph plus the per-variant results.
// It is immutable to callers after Build returns.
type BuildTree struct {
	graph      *graph.Graph
	startNodes []*graph.Node
	// filtered records that a package filter was requested; with a filter
	// that matched nothing, the traversal is empty rather than exhaustive.
	filtered bool

	variantKeys    []string
	externalDeps   map[string][]string
	installable    map[string][]string
	channels       map[string][]string
	testFeedstocks map[string][]string
}

// Build constructs the tree for every variant. Partial trees are never
// returned: any per-variant failure aborts the whole construction.
func Build(ctx context.Context, opts Options) (*BuildTree, error) {
	opts.fillDefaults()
	logger := ctxlog.FromContext(ctx)

	if len(opts.EnvFiles) == 0 {
		return nil, errs.New(errs.KindConfig, "no environment descriptor files given")
	}

	bt := &BuildTree{
		graph:          graph.New(),
		externalDeps:   make(map[string][]string),
		installable:    make(map[string][]string),
		channels:       make(map[string][]string),
		testFeedstocks: make(map[string][]string),
	}

	type validation struct {
		key   string
		g     *graph.Graph
		ext   []string
		start []*graph.Node
	}
	var validations []validation

	for _, v := range opts.Axes.Expand() {
		key := v.Key()
		logger.Info("Building variant graph.", "variant", key)

		vg, externals, envChannels, err := buildVariantGraph(ctx, opts, v)
		if err != nil {
			return nil, err
		}
		linkLocalEdges(vg)
		if err := resolveRemoteDeps(ctx, vg, opts.Querier, opts.Channels, v); err != nil {
			return nil, err
		}
		if err := failOnFatalCycles(vg, key); err != nil {
			return nil, err
		}

		start := startNodes(ctx, vg, opts.Packages, key)
		bt.startNodes = append(bt.startNodes, start...)
		bt.filtered = bt.filtered || len(opts.Packages) > 0

		bt.variantKeys = append(bt.variantKeys, key)
		bt.externalDeps[key] = externals
		bt.channels[key] = mergeOrdered(opts.Channels, envChannels)
		if len(opts.Packages) > 0 && len(start) == 0 {
			// The filter selected nothing in this variant; only the
			// declared externals remain installable.
			bt.installable[key] = InstallablePackages(graph.New(), externals, nil, false)
		} else {
			bt.installable[key] = InstallablePackages(vg, externals, start, false)
			bt.testFeedstocks[key] = feedstocksInOrder(vg, start)
		}

		validations = append(validations, validation{key: key, g: vg, ext: externals, start: start})
		bt.graph.Compose(vg)
		logger.Debug("Variant graph composed.", "variant", key, "nodes", vg.Len(), "edges", vg.EdgeCount())
	}

	units := make([]func(context.Context) error, 0, len(validations))
	for _, val := range validations {
		units = append(units, func(ctx context.Context) error {
			return opts.Validator.Validate(ctx, val.key, val.g, val.ext, val.start)
		})
	}
	if err := opts.Pool.Run(ctx, units); err != nil {
		return nil, err
	}

	// The public graph contains only buildable nodes; external nodes are
	// bypassed exactly once, here.
	bt.graph.BypassExternal()
	logger.Info("Build tree constructed.", "variants", len(bt.variantKeys), "commands", bt.Len())
	return bt, nil
}

// failOnFatalCycles renders every fatal cycle and fails construction when
// any exist.
func failOnFatalCycles(g *graph.Graph, variantKey string) error {
	fatal := g.FatalCycles()
	if len(fatal) == 0 {
		return nil
	}
	rendered := make([]string, 0, len(fatal))
	for _, cycle := range fatal {
		rendered = append(rendered, graph.RenderCycle(cycle))
	}
	return errs.New(errs.KindCycle, "build tree contains a dependency cycle:\n%s", strings.Join(rendered, "\n")).WithVariant(variantKey)
}

// startNodes determines the traversal roots of a variant's graph: the
// in-degree-zero nodes, or, when a package filter is given, exactly the
// buildable nodes whose package set intersects the filter. A filter name
// matched by nothing logs a notice and contributes no start nodes.
func startNodes(ctx context.Context, g *graph.Graph, packages []string, variantKey string) []*graph.Node {
	if len(packages) == 0 {
		return g.InDegreeZero()
	}
	logger := ctxlog.FromContext(ctx)
	buildable := g.BuildableInOrder(nil)

	for _, pkg := range packages {
		found := false
		for _, n := range buildable {
			if n.HasExactPackage(pkg) {
				found = true
				break
			}
		}
		if !found {
			logger.Info("No recipes were found for requested package.", "package", pkg, "variant", variantKey)
		}
	}

	var start []*graph.Node
	for _, n := range buildable {
		for _, pkg := range packages {
			if n.HasExactPackage(pkg) {
				start = append(start, n)
				break
			}
		}
	}
	return start
}

// feedstocksInOrder collects the repository names touched by the
// variant's reachable traversal; these are the feedstocks to run tests on.
func feedstocksInOrder(g *graph.Graph, start []*graph.Node) []string {
	seen := make(map[string]struct{})
	var repos []string
	for _, n := range g.BuildableInOrder(start) {
		name := n.Command.Repository
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		repos = append(repos, name)
	}
	return repos
}

// Commands returns every build command in dependency-respecting order:
// a command always appears after the commands it depends on.
func (t *BuildTree) Commands() []*buildcmd.BuildCommand {
	nodes := t.NodesInOrder()
	out := make([]*buildcmd.BuildCommand, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Command)
	}
	return out
}

// NodesInOrder is the node-level parallel of Commands.
func (t *BuildTree) NodesInOrder() []*graph.Node {
	if t.filtered && len(t.startNodes) == 0 {
		return nil
	}
	return t.graph.BuildableInOrder(t.startNodes)
}

// Len returns the number of buildable commands in the tree.
func (t *BuildTree) Len() int {
	count := 0
	for _, n := range t.graph.Nodes() {
		if n.Buildable() {
			count++
		}
	}
	return count
}

// Graph exposes the composed, external-free graph.
func (t *BuildTree) Graph() *graph.Graph {
	return t.graph
}

// VariantKeys returns the variant keys in construction order.
func (t *BuildTree) VariantKeys() []string {
	return t.variantKeys
}

// ExternalDependencies returns the external dependency list for a variant.
func (t *BuildTree) ExternalDependencies(variantKey string) []string {
	return t.externalDeps[variantKey]
}

// InstallableSet returns the variant's installable package list.
func (t *BuildTree) InstallableSet(variantKey string) []string {
	return t.installable[variantKey]
}

// Channels returns the channels for a variant's installable environment.
func (t *BuildTree) Channels(variantKey string) []string {
	return t.channels[variantKey]
}

// TestFeedstocks returns the repositories requiring test execution for a
// variant.
func (t *BuildTree) TestFeedstocks(variantKey string) []string {
	return t.testFeedstocks[variantKey]
}

// Dependencies renders the names of a node's buildable dependencies, one
// per distinct package group. Used in progress logs.
func (t *BuildTree) Dependencies(n *graph.Node) string {
	var names []string
	seen := make(map[string]struct{})
	for _, succ := range t.graph.Successors(n) {
		if !succ.Buildable() {
			continue
		}
		group := strings.Join(succ.Packages, ",")
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		names = append(names, "'"+succ.Command.Name()+"'")
	}
	return strings.Join(names, ", ")
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
