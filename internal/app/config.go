package app

import (
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	EnvFiles []string

	RuntimeVersions     []string
	BuildTypes          []string
	ParallelLibs        []string
	AcceleratorVersions []string

	Channels []string
	Packages []string

	RepositoryFolder string
	GitLocation      string
	GitTag           string
	OutputFolder     string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// Default values applied by NewConfig.
const (
	DefaultGitLocation  = "https://github.com/packsmith"
	DefaultOutputFolder = "packsmith_output"
	DefaultWorkerCount  = 8
)

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.EnvFiles) == 0 {
		return nil, fmt.Errorf("at least one environment descriptor file is required")
	}
	if cfg.GitLocation == "" {
		cfg.GitLocation = DefaultGitLocation
	}
	if cfg.OutputFolder == "" {
		cfg.OutputFolder = DefaultOutputFolder
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	return &cfg, nil
}
