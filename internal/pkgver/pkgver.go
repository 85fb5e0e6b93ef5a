// Package pkgver handles package dependency strings of the form
// "name [version-qualifier]", e.g. "openssl" or "openssl >=1.1.1".
package pkgver

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// StripQualifier returns the lowercased package name with any version
// qualifier removed. Matching across differently-qualified references to
// the same package always goes through this form.
func StripQualifier(dep string) string {
	fields := strings.Fields(strings.ToLower(dep))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SameBase reports whether two dependency strings refer to the same package
// once qualifiers are stripped.
func SameBase(a, b string) bool {
	return StripQualifier(a) == StripQualifier(b)
}

// Generalize loosens an exact-version qualifier to a canonical wildcard
// form: "pkg 2.4.1" becomes "pkg 2.4.*". Qualifiers carrying operators or
// wildcards pass through unchanged, as do bare names. A build string after
// the version pins the dependency exactly, so it passes through too, with
// whitespace collapsed.
func Generalize(dep string) string {
	fields := strings.Fields(strings.ToLower(dep))
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 {
		return fields[0]
	}
	if len(fields) > 2 {
		return strings.Join(fields, " ")
	}
	version := fields[1]
	if strings.ContainsAny(version, "<>=!*") {
		return fields[0] + " " + version
	}
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return fields[0] + " " + strings.Join(parts, ".") + ".*"
}

// Latest returns the highest of the given version strings. Versions are
// compared as semver where possible; strings that do not parse fall back to
// lexical comparison among themselves and never win over a parsed version.
func Latest(versions []string) string {
	var best string
	var bestParsed *semver.Version
	for _, raw := range versions {
		parsed, err := semver.NewVersion(raw)
		if err != nil {
			if bestParsed == nil && raw > best {
				best = raw
			}
			continue
		}
		if bestParsed == nil || parsed.GreaterThan(bestParsed) {
			bestParsed = parsed
			best = raw
		}
	}
	return best
}
