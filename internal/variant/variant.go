// Package variant models one concrete combination of the four build axes:
// runtime version, build type, parallel library, and accelerator version.
package variant

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Built-in defaults, used when an axis is left empty.
const (
	DefaultRuntimeVersion     = "3.10"
	DefaultBuildType          = "cpu"
	DefaultParallelLib        = "serial"
	DefaultAcceleratorVersion = "11.2"
)

// Variant is one concrete combination of axis values.
type Variant struct {
	Runtime     string
	BuildType   string
	ParallelLib string
	Accelerator string
}

// Key returns the string encoding of the variant, used to key per-variant
// results (external dependencies, installable sets, test feedstocks).
func (v Variant) Key() string {
	return fmt.Sprintf("runtime%s-%s-%s-accel%s", v.Runtime, v.BuildType, v.ParallelLib, v.Accelerator)
}

// Scope returns the variant's values as cty variables, for evaluating
// descriptor and recipe expressions against this variant.
func (v Variant) Scope() map[string]cty.Value {
	return map[string]cty.Value{
		"runtime":      cty.StringVal(v.Runtime),
		"build_type":   cty.StringVal(v.BuildType),
		"parallel_lib": cty.StringVal(v.ParallelLib),
		"accelerator":  cty.StringVal(v.Accelerator),
	}
}

// Axes holds the requested values per axis. An empty axis means "use the
// built-in default value".
type Axes struct {
	RuntimeVersions     []string
	BuildTypes          []string
	ParallelLibs        []string
	AcceleratorVersions []string
}

// Expand returns the full Cartesian product of the four axes as discrete
// variants, in axis-major order (runtime outermost, accelerator innermost).
// Every combination appears exactly once.
func (a Axes) Expand() []Variant {
	runtimes := orDefault(a.RuntimeVersions, DefaultRuntimeVersion)
	buildTypes := orDefault(a.BuildTypes, DefaultBuildType)
	parallelLibs := orDefault(a.ParallelLibs, DefaultParallelLib)
	accelerators := orDefault(a.AcceleratorVersions, DefaultAcceleratorVersion)

	variants := make([]Variant, 0, len(runtimes)*len(buildTypes)*len(parallelLibs)*len(accelerators))
	for _, rt := range runtimes {
		for _, bt := range buildTypes {
			for _, pl := range parallelLibs {
				for _, av := range accelerators {
					variants = append(variants, Variant{
						Runtime:     rt,
						BuildType:   bt,
						ParallelLib: pl,
						Accelerator: av,
					})
				}
			}
		}
	}
	return variants
}

func orDefault(values []string, def string) []string {
	if len(values) == 0 {
		return []string{def}
	}
	// Drop duplicates so the product cannot contain identical variants.
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
