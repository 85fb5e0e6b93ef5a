package pkgver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripQualifier(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"openssl", "openssl"},
		{"OpenSSL", "openssl"},
		{"openssl >=1.1.1", "openssl"},
		{"openssl   1.1.1 h2", "openssl"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, StripQualifier(tc.input), "input %q", tc.input)
	}
}

func TestSameBase(t *testing.T) {
	assert.True(t, SameBase("pkga", "pkga >=2.0"))
	assert.True(t, SameBase("PkgA 1.0", "pkga 2.0"))
	assert.False(t, SameBase("pkga", "pkgb"))
}

func TestGeneralize(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"pkg", "pkg"},
		{"pkg 2.4.1", "pkg 2.4.*"},
		{"pkg 2.4", "pkg 2.4.*"},
		{"Pkg 2.4.1.7", "pkg 2.4.*"},
		{"pkg >=2.0", "pkg >=2.0"},
		{"pkg 2.4.*", "pkg 2.4.*"},
		{"pkg !=1.0", "pkg !=1.0"},
		{"pkg 2.4.1 openblas", "pkg 2.4.1 openblas"},
		{"pkg   2.4.1   openblas", "pkg 2.4.1 openblas"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Generalize(tc.input), "input %q", tc.input)
	}
}

func TestLatest(t *testing.T) {
	testCases := []struct {
		name     string
		versions []string
		want     string
	}{
		{"semver ordering", []string{"1.9.0", "1.10.0", "1.2.3"}, "1.10.0"},
		{"single", []string{"2.0.0"}, "2.0.0"},
		{"unparseable falls back to lexical", []string{"beta", "alpha"}, "beta"},
		{"parsed beats unparseable", []string{"zzz", "0.0.1"}, "0.0.1"},
		{"empty", nil, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Latest(tc.versions))
		})
	}
}
