// Package app wires the orchestrator together: configuration, logging,
// the collaborator implementations, and the build-tree run sequence.
package app

import (
	"io"
	"log/slog"
	"time"

	"github.com/packsmith/packsmith/internal/buildenv"
	"github.com/packsmith/packsmith/internal/channel"
	"github.com/packsmith/packsmith/internal/pool"
	"github.com/packsmith/packsmith/internal/recipe"
	"github.com/packsmith/packsmith/internal/repo"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   *buildenv.Loader
	renderer recipe.Renderer
	provider repo.Provider
	querier  channel.Querier
	pool     *pool.Pool
}

// New is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func New(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   buildenv.NewLoader(),
		renderer: recipe.NewHCLRenderer(),
		provider: repo.NewGitProvider(),
		querier:  channel.NewHTTPQuerier(30 * time.Second),
		pool:     pool.New(cfg.WorkerCount),
	}
}
