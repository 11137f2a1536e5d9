// Package npm implements a dependency source backed by an npm-style
// package registry.
//
// For each package the client resolves a concrete version (the "latest"
// dist-tag unless a hint pins one), then fetches that version's manifest
// and returns its dependencies object. Responses are cached through the
// registry client.
package npm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/depgraph"
	"github.com/matzehuels/depscope/pkg/registry"
)

// DefaultRegistryURL is the public npm registry endpoint.
const DefaultRegistryURL = "https://registry.npmjs.org"

// Client fetches direct dependencies from an npm-style registry.
// It implements depgraph.Source.
type Client struct {
	client   *registry.Client
	baseURL  string
	versions map[string]string // per-package version hints
}

// Option configures a Client.
type Option func(*Client)

// WithVersionHint pins the version looked up for pkg. Packages without a
// hint resolve the latest dist-tag. Typically only the root package of an
// analysis carries a hint.
func WithVersionHint(pkg, version string) Option {
	return func(c *Client) {
		if version != "" && version != "latest" {
			c.versions[normalize(pkg)] = version
		}
	}
}

// NewClient creates a Client for the registry at baseURL, caching
// responses in store for ttl. An empty baseURL selects the public npm
// registry.
func NewClient(baseURL string, store cache.Cache, ttl time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	c := &Client{
		client:   registry.NewClient(store, "npm:", ttl, nil),
		baseURL:  strings.TrimRight(baseURL, "/"),
		versions: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns pkg's direct dependencies as name→version-constraint pairs.
func (c *Client) Fetch(ctx context.Context, pkg string) (map[string]string, error) {
	pkg = normalize(pkg)

	version, err := c.resolveVersion(ctx, pkg, c.versions[pkg])
	if err != nil {
		return nil, err
	}

	var v versionDetails
	if err := c.client.GetCached(ctx, c.baseURL+"/"+pkg+"/"+version, &v); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s@%s", err, pkg, version)
		}
		return nil, err
	}
	if v.Dependencies == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(v.Dependencies), nil
}

// resolveVersion maps an empty or "latest" hint to a concrete version via
// the package's dist-tags, falling back to the highest version key when no
// latest tag is published.
func (c *Client) resolveVersion(ctx context.Context, pkg, hint string) (string, error) {
	if hint != "" && hint != "latest" {
		return hint, nil
	}

	var data registryResponse
	if err := c.client.GetCached(ctx, c.baseURL+"/"+pkg, &data); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return "", fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return "", err
	}

	if data.DistTags.Latest != "" {
		return data.DistTags.Latest, nil
	}
	if len(data.Versions) > 0 {
		return slices.Max(slices.Collect(maps.Keys(data.Versions))), nil
	}
	return "", fmt.Errorf("no versions published for %s", pkg)
}

func normalize(pkg string) string {
	return strings.ToLower(strings.TrimSpace(pkg))
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Ensure Client implements the engine's source contract.
var _ depgraph.Source = (*Client)(nil)
