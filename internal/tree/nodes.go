package tree

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/packsmith/packsmith/internal/buildcmd"
	"github.com/packsmith/packsmith/internal/buildenv"
	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/graph"
	"github.com/packsmith/packsmith/internal/repo"
	"github.com/packsmith/packsmith/internal/variant"
)

// buildVariantGraph loads the environment descriptors for one variant and
// assembles the initial graph: one buildable node per rendered recipe
// package, plus an external node per declared external dependency. No
// edges yet. Metadata extraction fans out per feedstock on the pool;
// identical feedstock entries across merged descriptors are processed
// once. Returns the graph, the external dependency list, and the channels
// declared by the descriptor files.
func buildVariantGraph(ctx context.Context, opts Options, v variant.Variant) (*graph.Graph, []string, []string, error) {
	logger := ctxlog.FromContext(ctx)

	descriptors, err := opts.Loader.Load(ctx, opts.EnvFiles, v)
	if err != nil {
		if e, ok := err.(*errs.Error); ok && e.Variant == "" {
			e.WithVariant(v.Key())
		}
		return nil, nil, nil, err
	}

	g := graph.New()
	var externals []string
	var envChannels []string
	seenFeedstocks := make(map[string]struct{})

	// Configuration-override files from every descriptor apply to every
	// render, in import order.
	var configFiles []string
	for _, desc := range descriptors {
		configFiles = mergeOrdered(configFiles, desc.BuildConfigs)
	}

	var units []func(context.Context) error
	var mu sync.Mutex
	var nodes []*graph.Node

	for _, desc := range descriptors {
		descChannels := mergeOrdered(opts.Channels, desc.Channels)
		envChannels = mergeOrdered(envChannels, desc.Channels)

		for _, fs := range desc.Feedstocks {
			if _, ok := seenFeedstocks[fs.Fingerprint()]; ok {
				continue
			}
			seenFeedstocks[fs.Fingerprint()] = struct{}{}

			fs := fs
			descDir := filepath.Dir(desc.Path)
			envGitTag := desc.GitTag
			channels := mergeOrdered(descChannels, fs.Channels)
			units = append(units, func(ctx context.Context) error {
				built, err := extractFeedstockNodes(ctx, opts, fs, descDir, envGitTag, configFiles, channels, v)
				if err != nil {
					return err
				}
				mu.Lock()
				nodes = append(nodes, built...)
				mu.Unlock()
				return nil
			})
		}

		// External dependencies become top-level external nodes.
		for _, dep := range desc.ExternalDependencies {
			g.AddNode(graph.NewNode([]string{dep}, nil, descChannels))
			externals = append(externals, dep)
		}
	}

	if err := opts.Pool.Run(ctx, units); err != nil {
		if e, ok := err.(*errs.Error); ok && e.Variant == "" {
			e.WithVariant(v.Key())
		}
		return nil, nil, nil, err
	}

	for _, n := range nodes {
		g.AddNode(n)
	}
	logger.Debug("Variant nodes created.", "variant", v.Key(), "nodes", g.Len(), "externals", len(externals))
	return g, externals, envChannels, nil
}

// extractFeedstockNodes materializes one feedstock's repository and
// renders its recipes under the variant, producing one buildable node per
// rendered package.
func extractFeedstockNodes(ctx context.Context, opts Options, fs buildenv.Feedstock, patchDir, envGitTag string, configFiles, channels []string, v variant.Variant) ([]*graph.Node, error) {
	// Tag priority: command line, then the feedstock's own pin, then the
	// descriptor-level fallback.
	gitTag := fs.GitTag
	if gitTag == "" {
		gitTag = envGitTag
	}
	if opts.GitTag != "" {
		gitTag = opts.GitTag
	}

	dir, err := opts.Provider.Ensure(ctx, repo.Source{
		Name:     fs.Name,
		URL:      fs.URL,
		Tag:      gitTag,
		Patches:  fs.Patches,
		PatchDir: patchDir,
		BaseDir:  opts.RepositoryFolder,
		GitBase:  opts.GitLocation,
	})
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			e.WithVariant(v.Key())
		}
		return nil, err
	}

	metas, err := opts.Renderer.Render(ctx, dir, fs.RecipePath, configFiles, v)
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			e.WithVariant(v.Key())
			e.WithSubjects(fs.Name)
		}
		return nil, err
	}

	var nodes []*graph.Node
	for _, meta := range metas {
		if len(fs.Recipes) > 0 && !contains(fs.Recipes, meta.Name) {
			continue
		}
		cmd := &buildcmd.BuildCommand{
			Recipe:         meta.Name,
			Repository:     dir,
			RecipePath:     fs.RecipePath,
			Packages:       []string{meta.Name},
			Versions:       []string{meta.Version},
			RuntimePackage: fs.RuntimePackage,
			OutputFiles:    meta.OutputFiles,
			RunDeps:        meta.RunDeps,
			HostDeps:       meta.HostDeps,
			BuildDeps:      meta.BuildDeps,
			TestDeps:       meta.TestDeps,
			Runtime:        v.Runtime,
			BuildType:      v.BuildType,
			ParallelLib:    v.ParallelLib,
			Accelerator:    v.Accelerator,
			Channels:       channels,
		}
		nodes = append(nodes, graph.NewNode(cmd.Packages, cmd, channels))
	}
	return nodes, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
