// Package recipe defines the recipe renderer contract and an HCL-backed
// implementation: given a recipe file and a variant, produce the package
// metadata the dependency graph is built from.
package recipe

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/variant"
)

// Meta is the rendered metadata of one package produced by a recipe under
// one variant.
type Meta struct {
	Name    string
	Version string

	RunDeps   []string
	HostDeps  []string
	BuildDeps []string
	TestDeps  []string

	// OutputFiles identify the built artifacts, in "name version" form.
	OutputFiles []string
}

// Renderer renders a recipe into package metadata for a variant.
// configFiles are configuration-override files applied in order before
// the recipe is evaluated.
type Renderer interface {
	Render(ctx context.Context, dir, recipePath string, configFiles []string, v variant.Variant) ([]Meta, error)
}

// recipeFile is the HCL schema of a recipe.hcl file.
type recipeFile struct {
	Packages []*packageBlock `hcl:"package,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type packageBlock struct {
	Name         string             `hcl:"name,label"`
	Version      string             `hcl:"version"`
	Outputs      []string           `hcl:"outputs,optional"`
	Runtimes     []string           `hcl:"runtimes,optional"`
	Accelerators []string           `hcl:"accelerators,optional"`
	Requirements *requirementsBlock `hcl:"requirements,block"`
	Remain       hcl.Body           `hcl:",remain"`
}

type requirementsBlock struct {
	Run   []string `hcl:"run,optional"`
	Host  []string `hcl:"host,optional"`
	Build []string `hcl:"build,optional"`
	Test  []string `hcl:"test,optional"`
}

// HCLRenderer renders recipe.hcl files, evaluating attributes against the
// variant scope.
type HCLRenderer struct{}

// NewHCLRenderer creates an HCL recipe renderer.
func NewHCLRenderer() *HCLRenderer {
	return &HCLRenderer{}
}

// Render parses <dir>/<recipePath>/recipe.hcl and returns one Meta per
// package block whose runtime/accelerator gates admit the variant.
// Override files are HCL attribute files merged into the evaluation scope
// before the recipe is decoded, later files winning. Dependency strings
// are lowercased.
func (r *HCLRenderer) Render(ctx context.Context, dir, recipePath string, configFiles []string, v variant.Variant) ([]Meta, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(dir, recipePath, "recipe.hcl")
	logger.Debug("Rendering recipe.", "path", path, "variant", v.Key())

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.KindRender, diags, "parsing recipe %s", path).WithVariant(v.Key())
	}

	vars := v.Scope()
	for _, configFile := range configFiles {
		overrides, diags := parser.ParseHCLFile(configFile)
		if diags.HasErrors() {
			return nil, errs.Wrap(errs.KindRender, diags, "parsing build config %s", configFile).WithVariant(v.Key())
		}
		attrs, diags := overrides.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, errs.Wrap(errs.KindRender, diags, "decoding build config %s", configFile).WithVariant(v.Key())
		}
		for name, attr := range attrs {
			// Overrides evaluate against the plain variant scope, so the
			// result is independent of attribute iteration order.
			val, diags := attr.Expr.Value(&hcl.EvalContext{Variables: v.Scope()})
			if diags.HasErrors() {
				return nil, errs.Wrap(errs.KindRender, diags, "evaluating build config %s", configFile).WithVariant(v.Key())
			}
			vars[name] = val
		}
	}

	evalCtx := &hcl.EvalContext{Variables: vars}
	var root recipeFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, errs.Wrap(errs.KindRender, diags, "decoding recipe %s", path).WithVariant(v.Key())
	}

	var metas []Meta
	for _, block := range root.Packages {
		if !gateAllows(block.Runtimes, v.Runtime) || !gateAllows(block.Accelerators, v.Accelerator) {
			continue
		}
		name := strings.ToLower(block.Name)
		meta := Meta{
			Name:        name,
			Version:     block.Version,
			OutputFiles: block.Outputs,
		}
		if block.Requirements != nil {
			meta.RunDeps = lowered(block.Requirements.Run)
			meta.HostDeps = lowered(block.Requirements.Host)
			meta.BuildDeps = lowered(block.Requirements.Build)
			meta.TestDeps = lowered(block.Requirements.Test)
		}
		if len(meta.OutputFiles) == 0 {
			meta.OutputFiles = []string{name + " " + block.Version}
		}
		metas = append(metas, meta)
	}
	logger.Debug("Recipe rendered.", "path", path, "packages", len(metas))
	return metas, nil
}

func lowered(deps []string) []string {
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		out = append(out, strings.ToLower(dep))
	}
	return out
}

func gateAllows(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
