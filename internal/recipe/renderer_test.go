package recipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/variant"
)

var testVariant = variant.Variant{
	Runtime:     "3.10",
	BuildType:   "cpu",
	ParallelLib: "serial",
	Accelerator: "11.2",
}

// writeRecipe places a recipe.hcl under <dir>/<recipePath>/ and returns dir.
func writeRecipe(t *testing.T, recipePath, content string) string {
	t.Helper()
	dir := t.TempDir()
	full := filepath.Join(dir, recipePath)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "recipe.hcl"), []byte(content), 0o644))
	return dir
}

func TestRender_Basic(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "PkgA" {
			version = "1.2.3"

			requirements {
				run   = ["Zlib", "openssl >=1.1"]
				host  = ["cmake"]
				build = ["gcc"]
				test  = ["pytest"]
			}
		}
	`)

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, testVariant)

	require.NoError(t, err)
	require.Len(t, metas, 1)
	want := Meta{
		Name:        "pkga",
		Version:     "1.2.3",
		RunDeps:     []string{"zlib", "openssl >=1.1"},
		HostDeps:    []string{"cmake"},
		BuildDeps:   []string{"gcc"},
		TestDeps:    []string{"pytest"},
		OutputFiles: []string{"pkga 1.2.3"},
	}
	if diff := cmp.Diff(want, metas[0]); diff != "" {
		t.Fatalf("unexpected meta (-want +got):\n%s", diff)
	}
}

func TestRender_ExplicitOutputs(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "pkga" {
			version = "1.0"
			outputs = ["pkga-bin 1.0", "pkga-dev 1.0"]
		}
	`)

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, testVariant)

	require.NoError(t, err)
	assert.Equal(t, []string{"pkga-bin 1.0", "pkga-dev 1.0"}, metas[0].OutputFiles)
}

// TestRender_VariantInterpolation verifies recipe attributes evaluate
// against the variant scope, so dependency sets can differ per variant.
func TestRender_VariantInterpolation(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "pkga" {
			version = "1.${runtime}"

			requirements {
				run = ["runtime ${runtime}"]
			}
		}
	`)

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, testVariant)

	require.NoError(t, err)
	assert.Equal(t, "1.3.10", metas[0].Version)
	assert.Equal(t, []string{"runtime 3.10"}, metas[0].RunDeps)
}

func TestRender_VariantGates(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "always" {
			version = "1.0"
		}
		package "gated" {
			version  = "1.0"
			runtimes = ["2.1"]
		}
	`)

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, testVariant)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "always", metas[0].Name)

	gatedVariant := testVariant
	gatedVariant.Runtime = "2.1"
	metas, err = NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, gatedVariant)
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestRender_MultiplePackages(t *testing.T) {
	dir := writeRecipe(t, "custom/path", `
		package "first" {
			version = "1.0"
		}
		package "second" {
			version = "2.0"
		}
	`)

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "custom/path", nil, testVariant)

	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "first", metas[0].Name)
	assert.Equal(t, "second", metas[1].Name)
}

// TestRender_BuildConfigOverrides verifies configuration-override files
// extend the evaluation scope recipes are decoded against, with later
// files overriding earlier ones.
func TestRender_BuildConfigOverrides(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "pkga" {
			version = blas_version

			requirements {
				run = ["blas ${blas_version}"]
			}
		}
	`)
	configDir := t.TempDir()
	base := filepath.Join(configDir, "base.hcl")
	require.NoError(t, os.WriteFile(base, []byte(`blas_version = "0.2"`), 0o644))

	metas, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", []string{base}, testVariant)
	require.NoError(t, err)
	assert.Equal(t, "0.2", metas[0].Version)
	assert.Equal(t, []string{"blas 0.2"}, metas[0].RunDeps)

	// A later override file wins, and it may reference the variant scope.
	override := filepath.Join(configDir, "override.hcl")
	require.NoError(t, os.WriteFile(override, []byte(`blas_version = "0.3-${build_type}"`), 0o644))

	metas, err = NewHCLRenderer().Render(context.Background(), dir, "recipe", []string{base, override}, testVariant)
	require.NoError(t, err)
	assert.Equal(t, "0.3-cpu", metas[0].Version)
}

func TestRender_MissingBuildConfig(t *testing.T) {
	dir := writeRecipe(t, "recipe", `
		package "pkga" {
			version = "1.0"
		}
	`)

	_, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", []string{"/does/not/exist.hcl"}, testVariant)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindRender))
}

func TestRender_MissingRecipe(t *testing.T) {
	_, err := NewHCLRenderer().Render(context.Background(), t.TempDir(), "recipe", nil, testVariant)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindRender))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, testVariant.Key(), e.Variant)
}

func TestRender_MalformedRecipe(t *testing.T) {
	dir := writeRecipe(t, "recipe", `package "pkga" {`)

	_, err := NewHCLRenderer().Render(context.Background(), dir, "recipe", nil, testVariant)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindRender))
}
