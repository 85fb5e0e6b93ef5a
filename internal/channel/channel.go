// Package channel queries external package channels for the latest
// matching package and its dependency list.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/packsmith/packsmith/internal/ctxlog"
	"github.com/packsmith/packsmith/internal/errs"
	"github.com/packsmith/packsmith/internal/pkgver"
)

// PackageInfo is the data the graph consumes from a channel query.
type PackageInfo struct {
	Name         string
	Version      string
	Dependencies []string
}

// Querier resolves a package name against an ordered channel list.
// A false result with a nil error denotes a virtual/meta package, which
// callers skip without error.
type Querier interface {
	LatestPackage(ctx context.Context, channels []string, pkg string) (PackageInfo, bool, error)
}

// packageDocument is the wire shape served by a channel at
// <channel>/pkgs/<name>.json.
type packageDocument struct {
	Name     string `json:"name"`
	Versions map[string]struct {
		Dependencies []string `json:"dependencies"`
	} `json:"versions"`
}

// HTTPQuerier queries HTTP package channels in priority order.
type HTTPQuerier struct {
	client *http.Client
}

// NewHTTPQuerier creates a querier with an explicit request timeout.
func NewHTTPQuerier(timeout time.Duration) *HTTPQuerier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPQuerier{client: &http.Client{Timeout: timeout}}
}

// LatestPackage walks the channels in priority order and returns the
// highest version of the named package from the first channel carrying
// it. A package document with no versions is a virtual package. A package
// absent from every channel, or a failing channel, is an error.
func (q *HTTPQuerier) LatestPackage(ctx context.Context, channels []string, pkg string) (PackageInfo, bool, error) {
	logger := ctxlog.FromContext(ctx)
	name := pkgver.StripQualifier(pkg)

	for _, ch := range channels {
		doc, found, err := q.fetch(ctx, ch, name)
		if err != nil {
			return PackageInfo{}, false, err
		}
		if !found {
			continue
		}
		if len(doc.Versions) == 0 {
			logger.Debug("Package is virtual.", "package", name, "channel", ch)
			return PackageInfo{}, false, nil
		}
		versions := make([]string, 0, len(doc.Versions))
		for v := range doc.Versions {
			versions = append(versions, v)
		}
		latest := pkgver.Latest(versions)
		return PackageInfo{
			Name:         name,
			Version:      latest,
			Dependencies: doc.Versions[latest].Dependencies,
		}, true, nil
	}
	return PackageInfo{}, false, errs.New(errs.KindResolve, "package %q not found on any channel", name).WithSubjects(name)
}

func (q *HTTPQuerier) fetch(ctx context.Context, channelURL, name string) (packageDocument, bool, error) {
	endpoint := fmt.Sprintf("%s/pkgs/%s.json", channelURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return packageDocument{}, false, errs.Wrap(errs.KindResolve, err, "building query for %s", endpoint)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return packageDocument{}, false, errs.Wrap(errs.KindResolve, err, "querying channel %s", channelURL).WithSubjects(name)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return packageDocument{}, false, nil
	case resp.StatusCode != http.StatusOK:
		return packageDocument{}, false, errs.New(errs.KindResolve, "channel %s returned status %d for %q", channelURL, resp.StatusCode, name).WithSubjects(name)
	}

	var doc packageDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return packageDocument{}, false, errs.Wrap(errs.KindResolve, err, "decoding response from %s", channelURL).WithSubjects(name)
	}
	return doc, true, nil
}
