// Package cli parses command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/packsmith/packsmith/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("packsmith", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
packsmith - multi-variant package build orchestrator.

Usage:
  packsmith [options] ENV_FILE [ENV_FILE...]

Arguments:
  ENV_FILE
    Path to an environment descriptor (.env.hcl) file.

Options:
`)
		flagSet.PrintDefaults()
	}

	runtimesFlag := flagSet.String("runtime-versions", "", "Comma-separated runtime versions to build for.")
	buildTypesFlag := flagSet.String("build-types", "", "Comma-separated build types to build for.")
	parallelLibsFlag := flagSet.String("parallel-libs", "", "Comma-separated parallel library types to build for.")
	acceleratorsFlag := flagSet.String("accelerator-versions", "", "Comma-separated accelerator versions to build for.")
	channelsFlag := flagSet.String("channels", "", "Comma-separated package channels, highest priority first.")
	packagesFlag := flagSet.String("packages", "", "Comma-separated package names to restrict the build to.")
	repoFolderFlag := flagSet.String("repository-folder", "./", "Folder to clone feedstock repositories into.")
	gitLocationFlag := flagSet.String("git-location", app.DefaultGitLocation, "Base location for feedstock git repositories.")
	gitTagFlag := flagSet.String("git-tag", "", "Tag to checkout for every feedstock, overriding per-feedstock pins.")
	outputFolderFlag := flagSet.String("output-folder", app.DefaultOutputFolder, "Folder to write environment files into.")
	workersFlag := flagSet.Int("workers", app.DefaultWorkerCount, "Number of concurrent workers for metadata extraction.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		EnvFiles:            flagSet.Args(),
		RuntimeVersions:     splitList(*runtimesFlag),
		BuildTypes:          splitList(*buildTypesFlag),
		ParallelLibs:        splitList(*parallelLibsFlag),
		AcceleratorVersions: splitList(*acceleratorsFlag),
		Channels:            splitList(*channelsFlag),
		Packages:            splitList(*packagesFlag),
		RepositoryFolder:    *repoFolderFlag,
		GitLocation:         *gitLocationFlag,
		GitTag:              *gitTagFlag,
		OutputFolder:        *outputFolderFlag,
		LogFormat:           logFormat,
		LogLevel:            logLevel,
		WorkerCount:         *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}

// splitList parses a comma-separated argument list, dropping empty items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
