package buildenv

import "github.com/hashicorp/hcl/v2"

// fileRoot is the HCL schema for a descriptor file.
type fileRoot struct {
	ImportedEnvs         []string          `hcl:"imported_envs,optional"`
	GitTag               string            `hcl:"git_tag,optional"`
	Channels             []string          `hcl:"channels,optional"`
	ExternalDependencies []string          `hcl:"external_dependencies,optional"`
	BuildConfigs         []string          `hcl:"build_configs,optional"`
	Feedstocks           []*feedstockBlock `hcl:"feedstock,block"`
	Remain               hcl.Body          `hcl:",remain"`
}

// feedstockBlock is the HCL schema for a `feedstock "<name>" {}` block.
type feedstockBlock struct {
	Name           string   `hcl:"name,label"`
	URL            string   `hcl:"url,optional"`
	GitTag         string   `hcl:"git_tag,optional"`
	RecipePath     string   `hcl:"recipe_path,optional"`
	Recipes        []string `hcl:"recipes,optional"`
	Patches        []string `hcl:"patches,optional"`
	Channels       []string `hcl:"channels,optional"`
	RuntimePackage *bool    `hcl:"runtime_package,optional"`
	// Runtimes and Accelerators gate the entry to a subset of variants.
	// Empty means the entry applies to every variant.
	Runtimes     []string `hcl:"runtimes,optional"`
	Accelerators []string `hcl:"accelerators,optional"`
	Remain       hcl.Body `hcl:",remain"`
}
