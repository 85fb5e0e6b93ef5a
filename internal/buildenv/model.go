// Package buildenv loads environment descriptor files: which feedstocks to
// build, which package channels to use, and which dependencies come from
// outside the local build.
package buildenv

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Descriptor is the typed model of one environment descriptor file, after
// variant evaluation and import resolution.
type Descriptor struct {
	// Path is the file this descriptor was loaded from.
	Path string
	// GitTag is the fallback checkout tag for feedstocks that do not pin
	// their own. Default: none.
	GitTag string
	// Channels lists package-source locations declared by the file,
	// highest priority first. Default: none.
	Channels []string
	// BuildConfigs are configuration-override files applied when recipes
	// are rendered, in declaration order. Paths are stored absolute and
	// must exist at load time.
	BuildConfigs []string
	// ExternalDependencies are packages required at runtime but never
	// built locally. Default: none.
	ExternalDependencies []string
	// Feedstocks are the repositories to build, already filtered to the
	// loaded variant.
	Feedstocks []Feedstock
}

// Feedstock is one source repository entry in a descriptor.
type Feedstock struct {
	// Name identifies the feedstock. Without an explicit URL it expands
	// to "<git-location>/<name>-feedstock.git".
	Name string
	// URL overrides the derived git location. Default: derived from Name.
	URL string
	// GitTag pins the checkout. Default: the repository's default branch.
	GitTag string
	// RecipePath locates the recipe file inside the repository.
	// Default: "recipe".
	RecipePath string
	// Recipes restricts which recipe entries to build. Default: all.
	Recipes []string
	// Patches are applied after checkout, in order. Default: none.
	Patches []string
	// Channels are feedstock-specific package sources. Default: none.
	Channels []string
	// RuntimePackage marks the feedstock's outputs as part of the
	// installable environment. Default: true.
	RuntimePackage bool
}

// Fingerprint returns a content hash of the entry. Identical entries
// reached through different descriptor imports are deduplicated on it.
func (f Feedstock) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%s|%s|%s|%s|%s|%t",
		f.Name, f.URL, f.GitTag, f.RecipePath,
		strings.Join(f.Recipes, ","), strings.Join(f.Patches, ","),
		strings.Join(f.Channels, ","), f.RuntimePackage,
	)))
	return hex.EncodeToString(sum[:])
}
