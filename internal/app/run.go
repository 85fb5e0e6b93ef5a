package app

import (
	"context"
	"fmt"
	"os"

	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/manifest"
	"github.com/packsmith/packsmith/internal/tree"
	"github.com/packsmith/packsmith/internal/variant"
)

// Run executes the main application logic: build the dependency tree,
// print the build order, and write the per-variant environment files.
// Invoking the builds themselves is the caller's concern; the app stops
// at ordering and manifest output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.RepositoryFolder != "" {
		if err := os.MkdirAll(a.config.RepositoryFolder, 0o755); err != nil {
			return fmt.Errorf("creating repository folder: %w", err)
		}
	}

	buildTree, err := tree.Build(ctx, tree.Options{
		EnvFiles: a.config.EnvFiles,
		Axes: variant.Axes{
			RuntimeVersions:     a.config.RuntimeVersions,
			BuildTypes:          a.config.BuildTypes,
			ParallelLibs:        a.config.ParallelLibs,
			AcceleratorVersions: a.config.AcceleratorVersions,
		},
		RepositoryFolder: a.config.RepositoryFolder,
		GitLocation:      a.config.GitLocation,
		GitTag:           a.config.GitTag,
		Channels:         a.config.Channels,
		Packages:         a.config.Packages,
		Loader:           a.loader,
		Renderer:         a.renderer,
		Provider:         a.provider,
		Querier:          a.querier,
		Pool:             a.pool,
	})
	if err != nil {
		return fmt.Errorf("failed to build dependency tree: %w", err)
	}
	a.logger.Info("Dependency tree built.", "commands", buildTree.Len())

	for i, cmd := range buildTree.Commands() {
		a.logger.Info("Build order.", "position", i+1, "recipe", cmd.Name(), "repository", cmd.Repository)
	}

	for _, key := range buildTree.VariantKeys() {
		path, err := manifest.Write(key, buildTree.InstallableSet(key), buildTree.Channels(key), a.config.OutputFolder)
		if err != nil {
			return err
		}
		a.logger.Info("Environment file written.", "variant", key, "path", path)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
