// Package graph implements the dependency graph the build tree is built
// on: nodes identified by a stable derived key, directed edges meaning
// "source depends on destination", postorder traversal, simple-cycle
// enumeration, and external-node bypass.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/packsmith/packsmith/internal/buildcmd"
	"github.com/packsmith/packsmith/internal/pkgver"
)

// Node is a graph vertex: a set of package names plus, for locally built
// packages, the command that produces them. A node without a command is
// external; its packages must come from a package channel.
type Node struct {
	Packages []string
	Command  *buildcmd.BuildCommand
	// Channels lists this node's own package-source locations, highest
	// priority first.
	Channels []string

	key string
}

// NewNode creates a node. The identity key is derived once here: from the
// command for buildable nodes, from the sorted package set for external
// ones. It never changes afterwards, so nodes stay valid as map keys while
// the graph around them mutates.
func NewNode(packages []string, cmd *buildcmd.BuildCommand, channels []string) *Node {
	pkgs := append([]string(nil), packages...)
	sort.Strings(pkgs)

	var key string
	if cmd != nil {
		key = "cmd:" + cmd.Key()
	} else {
		key = "pkg:" + strings.Join(pkgs, ",")
	}
	return &Node{
		Packages: pkgs,
		Command:  cmd,
		Channels: append([]string(nil), channels...),
		key:      key,
	}
}

// Key returns the node's stable identity. Two nodes with equal keys are
// the same vertex and are unified when added to a graph.
func (n *Node) Key() string {
	return n.key
}

// Buildable reports whether the node is produced by a local recipe.
func (n *Node) Buildable() bool {
	return n.Command != nil
}

// HasPackage reports whether the node's package set contains the given
// qualifier-stripped name.
func (n *Node) HasPackage(name string) bool {
	for _, pkg := range n.Packages {
		if pkgver.StripQualifier(pkg) == name {
			return true
		}
	}
	return false
}

// HasExactPackage reports whether the node's package set contains name
// verbatim.
func (n *Node) HasExactPackage(name string) bool {
	for _, pkg := range n.Packages {
		if pkg == name {
			return true
		}
	}
	return false
}

// Label returns the node's display form: the recipe name for buildable
// nodes, the package set for external ones. Used in cycle reports.
func (n *Node) Label() string {
	if n.Command != nil {
		return n.Command.Recipe
	}
	return fmt.Sprintf("{%s}", strings.Join(n.Packages, ", "))
}

func (n *Node) String() string {
	if n.Command != nil {
		return fmt.Sprintf("(%v : %s)", n.Packages, n.Command.Name())
	}
	return fmt.Sprintf("(%v : external)", n.Packages)
}
