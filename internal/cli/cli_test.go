package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsmith/packsmith/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer

	config, shouldExit, err := Parse([]string{"env.hcl"}, &out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, []string{"env.hcl"}, config.EnvFiles)
	assert.Empty(t, config.RuntimeVersions)
	assert.Equal(t, app.DefaultGitLocation, config.GitLocation)
	assert.Equal(t, app.DefaultOutputFolder, config.OutputFolder)
	assert.Equal(t, app.DefaultWorkerCount, config.WorkerCount)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, "info", config.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	var out bytes.Buffer

	config, shouldExit, err := Parse([]string{
		"--runtime-versions", "3.10, 3.11",
		"--build-types", "cpu,cuda",
		"--parallel-libs", "openmpi",
		"--accelerator-versions", "11.2",
		"--channels", "https://a.example.com,https://b.example.com",
		"--packages", "pkga,pkgb",
		"--repository-folder", "/tmp/repos",
		"--git-tag", "v1.2.3",
		"--output-folder", "/tmp/out",
		"--workers", "4",
		"--log-format", "json",
		"--log-level", "debug",
		"one.hcl", "two.hcl",
	}, &out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, []string{"one.hcl", "two.hcl"}, config.EnvFiles)
	assert.Equal(t, []string{"3.10", "3.11"}, config.RuntimeVersions)
	assert.Equal(t, []string{"cpu", "cuda"}, config.BuildTypes)
	assert.Equal(t, []string{"openmpi"}, config.ParallelLibs)
	assert.Equal(t, []string{"11.2"}, config.AcceleratorVersions)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.Channels)
	assert.Equal(t, []string{"pkga", "pkgb"}, config.Packages)
	assert.Equal(t, "/tmp/repos", config.RepositoryFolder)
	assert.Equal(t, "v1.2.3", config.GitTag)
	assert.Equal(t, "/tmp/out", config.OutputFolder)
	assert.Equal(t, 4, config.WorkerCount)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestParse_NoArgsShowsUsage(t *testing.T) {
	var out bytes.Buffer

	config, shouldExit, err := Parse(nil, &out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer

	_, shouldExit, err := Parse([]string{"-h"}, &out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
}

func TestParse_InvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"bad log format", []string{"--log-format", "xml", "env.hcl"}},
		{"bad log level", []string{"--log-level", "loud", "env.hcl"}},
		{"unknown flag", []string{"--no-such-flag", "env.hcl"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tc.args, &out)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
