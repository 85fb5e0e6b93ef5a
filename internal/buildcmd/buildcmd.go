// Package buildcmd defines BuildCommand, one buildable unit produced by
// rendering a recipe under a specific variant.
package buildcmd

import (
	"fmt"
	"sort"

	"github.com/packsmith/packsmith/internal/variant"
)

// BuildCommand describes everything needed to build one recipe under one
// variant. It is a value type: two commands are interchangeable iff their
// identifying fields (recipe plus the four axis values) match.
type BuildCommand struct {
	Recipe     string
	Repository string
	RecipePath string

	Packages []string
	Versions []string

	// RuntimePackage marks commands whose outputs belong in the
	// installable environment for the variant.
	RuntimePackage bool
	OutputFiles    []string

	RunDeps   []string
	HostDeps  []string
	BuildDeps []string
	TestDeps  []string

	Runtime     string
	BuildType   string
	ParallelLib string
	Accelerator string

	// Channels lists package-source locations, highest priority first.
	Channels []string
}

// Variant returns the axis values this command was rendered under.
func (c *BuildCommand) Variant() variant.Variant {
	return variant.Variant{
		Runtime:     c.Runtime,
		BuildType:   c.BuildType,
		ParallelLib: c.ParallelLib,
		Accelerator: c.Accelerator,
	}
}

// Key returns the command's identity string. Commands with equal keys are
// the same buildable unit.
func (c *BuildCommand) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", c.Recipe, c.Runtime, c.BuildType, c.ParallelLib, c.Accelerator)
}

// Equal reports whether two commands identify the same buildable unit.
func (c *BuildCommand) Equal(other *BuildCommand) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key() == other.Key()
}

// Name returns a short human-readable identifier for logs and cycle
// reports.
func (c *BuildCommand) Name() string {
	return fmt.Sprintf("%s-%s", c.Recipe, c.Variant().Key())
}

// AllDeps returns the union of the run, host, build, and test dependency
// sets, deduplicated and sorted.
func (c *BuildCommand) AllDeps() []string {
	seen := make(map[string]struct{})
	var deps []string
	for _, set := range [][]string{c.RunDeps, c.HostDeps, c.BuildDeps, c.TestDeps} {
		for _, dep := range set {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			deps = append(deps, dep)
		}
	}
	sort.Strings(deps)
	return deps
}
