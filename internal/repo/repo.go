// Package repo provides the source repository provider: given a feedstock
// location it guarantees a local working directory exists, cloning,
// checking out and patching as needed.
package repo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
)

// supportedGitProtocols mark a feedstock value as an explicit URL rather
// than a name to expand against the base git location.
var supportedGitProtocols = []string{"https://", "http://", "git@", "ssh://"}

// Source describes one repository to materialize.
type Source struct {
	// Name is the feedstock name; used to derive the URL and directory
	// when URL is empty.
	Name string
	// URL is an explicit git location.
	URL string
	// Tag pins the checkout; empty means the default branch.
	Tag string
	// Patches are applied in order after checkout, resolved relative to
	// PatchDir when not absolute.
	Patches  []string
	PatchDir string
	// BaseDir is the folder repositories are placed under.
	BaseDir string
	// GitBase is the location bare names expand against.
	GitBase string
}

// resolve returns the effective git URL and local directory name.
func (s Source) resolve() (url, dirName string) {
	value := s.URL
	if value == "" {
		value = s.Name
	}
	for _, protocol := range supportedGitProtocols {
		if strings.HasPrefix(value, protocol) {
			url = value
			if !strings.HasSuffix(url, ".git") {
				url += ".git"
			}
			base := filepath.Base(url)
			return url, strings.TrimSuffix(base, ".git")
		}
	}
	return fmt.Sprintf("%s/%s-feedstock.git", s.GitBase, value), value + "-feedstock"
}

// Provider guarantees a local directory exists for a source repository.
type Provider interface {
	Ensure(ctx context.Context, src Source) (dir string, err error)
}

// GitProvider materializes repositories by shelling out to git.
type GitProvider struct{}

// NewGitProvider creates a git-backed provider.
func NewGitProvider() *GitProvider {
	return &GitProvider{}
}

// Ensure clones the repository into its directory under BaseDir unless it
// already exists, then applies any patches. A failed clone or patch
// removes the partial directory and reports a fetch error.
func (p *GitProvider) Ensure(ctx context.Context, src Source) (string, error) {
	logger := ctxlog.FromContext(ctx)
	url, dirName := src.resolve()
	dir := filepath.Join(src.BaseDir, dirName)

	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}

	args := []string{"clone"}
	if src.Tag != "" {
		args = append(args, "--branch", src.Tag)
	}
	args = append(args, url, dir)
	logger.Info("Cloning feedstock repository.", "url", url, "dir", dir)
	if out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput(); err != nil {
		return "", errs.Wrap(errs.KindFetch, err, "cloning %s: %s", url, strings.TrimSpace(string(out))).WithSubjects(src.Name)
	}

	for _, patch := range src.Patches {
		patchFile := patch
		if !filepath.IsAbs(patchFile) {
			patchFile = filepath.Join(src.PatchDir, patchFile)
		}
		logger.Info("Applying patch.", "patch", patchFile, "dir", dir)
		cmd := exec.CommandContext(ctx, "git", "apply", patchFile)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			os.RemoveAll(dir)
			return "", errs.Wrap(errs.KindFetch, err, "applying patch %s: %s", patch, strings.TrimSpace(string(out))).WithSubjects(src.Name)
		}
	}
	return dir, nil
}

// LocalProvider serves repositories that already exist on disk, keyed by
// feedstock name under BaseDir. Used by tests and pre-checked-out trees.
type LocalProvider struct {
	BaseDir string
}

// Ensure verifies the directory exists.
func (p *LocalProvider) Ensure(ctx context.Context, src Source) (string, error) {
	dir := filepath.Join(p.BaseDir, src.Name)
	if _, err := os.Stat(dir); err != nil {
		return "", errs.Wrap(errs.KindFetch, err, "feedstock directory %s missing", dir).WithSubjects(src.Name)
	}
	return dir, nil
}
