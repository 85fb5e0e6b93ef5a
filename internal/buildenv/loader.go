package buildenv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/variant"
)

// Loader parses environment descriptor files.
type Loader struct{}

// NewLoader creates a descriptor loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the given descriptor files for one variant, following
// imported_envs references relative to the importing file. Each file is
// loaded at most once; the result holds one Descriptor per file in
// import order. Feedstock entries whose runtime/accelerator gates exclude
// the variant are dropped.
func (l *Loader) Load(ctx context.Context, paths []string, v variant.Variant) ([]Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading environment descriptors.", "count", len(paths), "variant", v.Key())

	parser := hclparse.NewParser()
	evalCtx := &hcl.EvalContext{Variables: v.Scope()}

	seen := make(map[string]struct{})
	var descriptors []Descriptor

	var load func(path string) error
	load = func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errs.Wrap(errs.KindConfig, err, "resolving descriptor path %q", path)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}

		file, diags := parser.ParseHCLFile(abs)
		if diags.HasErrors() {
			return errs.Wrap(errs.KindConfig, diags, "parsing descriptor %s", path)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
			return errs.Wrap(errs.KindConfig, diags, "decoding descriptor %s", path)
		}
		if err := rejectUnknownKeys(root.Remain, path); err != nil {
			return err
		}

		desc := Descriptor{
			Path:                 abs,
			GitTag:               root.GitTag,
			Channels:             root.Channels,
			ExternalDependencies: root.ExternalDependencies,
		}
		for _, configFile := range root.BuildConfigs {
			configPath := configFile
			if !filepath.IsAbs(configPath) {
				configPath = filepath.Join(filepath.Dir(abs), configPath)
			}
			if _, err := os.Stat(configPath); err != nil {
				return errs.New(errs.KindConfig, "build config file %q referenced by %s does not exist", configFile, path)
			}
			desc.BuildConfigs = append(desc.BuildConfigs, configPath)
		}
		for _, block := range root.Feedstocks {
			if err := rejectUnknownKeys(block.Remain, path); err != nil {
				return err
			}
			if !gateAllows(block.Runtimes, v.Runtime) || !gateAllows(block.Accelerators, v.Accelerator) {
				logger.Debug("Feedstock excluded by variant gate.", "feedstock", block.Name, "variant", v.Key())
				continue
			}
			desc.Feedstocks = append(desc.Feedstocks, feedstockFromBlock(block))
		}
		descriptors = append(descriptors, desc)

		for _, imported := range root.ImportedEnvs {
			importPath := imported
			if !filepath.IsAbs(importPath) {
				importPath = filepath.Join(filepath.Dir(abs), importPath)
			}
			if err := load(importPath); err != nil {
				return err
			}
		}
		return nil
	}

	for _, path := range paths {
		if err := load(path); err != nil {
			return nil, err
		}
	}
	logger.Debug("Descriptors loaded.", "files", len(descriptors))
	return descriptors, nil
}

// feedstockFromBlock applies the documented defaults.
func feedstockFromBlock(block *feedstockBlock) Feedstock {
	fs := Feedstock{
		Name:           block.Name,
		URL:            block.URL,
		GitTag:         block.GitTag,
		RecipePath:     block.RecipePath,
		Recipes:        block.Recipes,
		Patches:        block.Patches,
		Channels:       block.Channels,
		RuntimePackage: true,
	}
	if fs.RecipePath == "" {
		fs.RecipePath = "recipe"
	}
	if block.RuntimePackage != nil {
		fs.RuntimePackage = *block.RuntimePackage
	}
	return fs
}

// rejectUnknownKeys fails on any attribute or block the schema does not
// declare, naming the first offender and its file.
func rejectUnknownKeys(remain hcl.Body, path string) error {
	body, ok := remain.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	// The remain body still lists every attribute and block; the ones the
	// schema consumed are recorded only in unexported hidden sets. Declare
	// everything present and let PartialContent filter, so the returned
	// content holds exactly the entries the schema did not declare.
	schema := &hcl.BodySchema{}
	for name := range body.Attributes {
		schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{Name: name})
	}
	seenBlockTypes := make(map[string]struct{})
	for _, block := range body.Blocks {
		if _, ok := seenBlockTypes[block.Type]; ok {
			continue
		}
		seenBlockTypes[block.Type] = struct{}{}
		labels := make([]string, len(block.Labels))
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{Type: block.Type, LabelNames: labels})
	}
	content, _, _ := body.PartialContent(schema)
	for name := range content.Attributes {
		return errs.New(errs.KindConfig, "unexpected key %q was found in %s", name, path)
	}
	for _, block := range content.Blocks {
		return errs.New(errs.KindConfig, "unexpected block %q was found in %s", block.Type, path)
	}
	return nil
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
