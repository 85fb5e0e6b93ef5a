// Package manifest writes the per-variant installable environment file.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/packsmith/packsmith/internal/errs"
)

// FilePrefix is the name prefix of every generated environment file.
const FilePrefix = "packsmith-env-"

// EnvFile is the YAML document describing one variant's installable
// environment.
type EnvFile struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels"`
	Dependencies []string `yaml:"dependencies"`
}

// Write renders the environment file for one variant key into dir and
// returns its path.
func Write(variantKey string, packages, channels []string, dir string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errs.Wrap(errs.KindConfig, err, "creating output folder %s", dir)
		}
	}
	doc := EnvFile{
		Name:         FilePrefix + variantKey,
		Channels:     channels,
		Dependencies: packages,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", errs.Wrap(errs.KindInternal, err, "encoding environment file for %s", variantKey)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s.yaml", FilePrefix, variantKey))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errs.Wrap(errs.KindConfig, err, "writing environment file %s", path)
	}
	return path, nil
}
