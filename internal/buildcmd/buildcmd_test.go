package buildcmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/packsmith/packsmith/internal/variant"
)

func command(recipe string) *BuildCommand {
	return &BuildCommand{
		Recipe:      recipe,
		Runtime:     "3.10",
		BuildType:   "cpu",
		ParallelLib: "serial",
		Accelerator: "11.2",
	}
}

func TestBuildCommand_Equal(t *testing.T) {
	a := command("pkga")
	b := command("pkga")
	b.Repository = "/somewhere/else"

	// Identity is the recipe plus axis values; incidental fields do not count.
	assert.True(t, a.Equal(b))

	c := command("pkga")
	c.Runtime = "3.11"
	assert.False(t, a.Equal(c))

	d := command("pkgb")
	assert.False(t, a.Equal(d))

	var nilCmd *BuildCommand
	assert.False(t, a.Equal(nilCmd))
	assert.True(t, nilCmd.Equal(nil))
}

func TestBuildCommand_Name(t *testing.T) {
	cmd := command("pkga")
	assert.Equal(t, "pkga-runtime3.10-cpu-serial-accel11.2", cmd.Name())
}

func TestBuildCommand_Variant(t *testing.T) {
	cmd := command("pkga")
	assert.Equal(t, variant.Variant{
		Runtime:     "3.10",
		BuildType:   "cpu",
		ParallelLib: "serial",
		Accelerator: "11.2",
	}, cmd.Variant())
}

func TestBuildCommand_AllDeps(t *testing.T) {
	cmd := command("pkga")
	cmd.RunDeps = []string{"zlib", "openssl"}
	cmd.HostDeps = []string{"cmake", "zlib"}
	cmd.BuildDeps = []string{"gcc"}
	cmd.TestDeps = []string{"pytest"}

	want := []string{"cmake", "gcc", "openssl", "pytest", "zlib"}
	if diff := cmp.Diff(want, cmd.AllDeps()); diff != "" {
		t.Fatalf("unexpected dependency union (-want +got):\n%s", diff)
	}
}
