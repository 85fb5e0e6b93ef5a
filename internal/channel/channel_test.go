package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsmith/packsmith/internal/errs"
)

// newChannelServer serves package documents from the given map at the
// channel wire path /pkgs/<name>.json.
func newChannelServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, doc := range docs {
			if r.URL.Path == fmt.Sprintf("/pkgs/%s.json", name) {
				fmt.Fprint(w, doc)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLatestPackage_PicksHighestVersion(t *testing.T) {
	server := newChannelServer(t, map[string]string{
		"openssl": `{
			"name": "openssl",
			"versions": {
				"1.9.0":  {"dependencies": ["old"]},
				"1.10.0": {"dependencies": ["zlib", "libffi >=3.0"]}
			}
		}`,
	})

	q := NewHTTPQuerier(5 * time.Second)
	info, found, err := q.LatestPackage(context.Background(), []string{server.URL}, "openssl >=1.0")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "openssl", info.Name)
	assert.Equal(t, "1.10.0", info.Version)
	assert.Equal(t, []string{"zlib", "libffi >=3.0"}, info.Dependencies)
}

// TestLatestPackage_ChannelPriority verifies the first channel carrying
// the package wins, even when a later channel also has it.
func TestLatestPackage_ChannelPriority(t *testing.T) {
	missing := newChannelServer(t, nil)
	first := newChannelServer(t, map[string]string{
		"zlib": `{"name": "zlib", "versions": {"1.0.0": {"dependencies": []}}}`,
	})
	second := newChannelServer(t, map[string]string{
		"zlib": `{"name": "zlib", "versions": {"9.9.9": {"dependencies": []}}}`,
	})

	q := NewHTTPQuerier(5 * time.Second)
	info, found, err := q.LatestPackage(context.Background(), []string{missing.URL, first.URL, second.URL}, "zlib")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1.0.0", info.Version, "a missing channel falls through; a carrying channel ends the search")
}

func TestLatestPackage_VirtualPackage(t *testing.T) {
	server := newChannelServer(t, map[string]string{
		"meta": `{"name": "meta", "versions": {}}`,
	})

	q := NewHTTPQuerier(5 * time.Second)
	_, found, err := q.LatestPackage(context.Background(), []string{server.URL}, "meta")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestLatestPackage_NotFoundAnywhere(t *testing.T) {
	server := newChannelServer(t, nil)

	q := NewHTTPQuerier(5 * time.Second)
	_, _, err := q.LatestPackage(context.Background(), []string{server.URL}, "ghost")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindResolve))
	assert.Contains(t, err.Error(), `"ghost" not found on any channel`)
}

func TestLatestPackage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	q := NewHTTPQuerier(5 * time.Second)
	_, _, err := q.LatestPackage(context.Background(), []string{server.URL}, "zlib")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindResolve))
	assert.Contains(t, err.Error(), "status 500")
}

func TestLatestPackage_MalformedDocument(t *testing.T) {
	server := newChannelServer(t, map[string]string{
		"zlib": `{not json`,
	})

	q := NewHTTPQuerier(5 * time.Second)
	_, _, err := q.LatestPackage(context.Background(), []string{server.URL}, "zlib")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindResolve))
}
