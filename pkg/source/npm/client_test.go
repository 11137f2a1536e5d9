package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/depscope/pkg/cache"
)

// fakeRegistry serves npm-style metadata for a fixed set of packages.
type fakeRegistry struct {
	packages map[string]registryResponse
	requests []string
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests = append(f.requests, r.URL.Path)
	name := r.URL.Path[1:]

	// Version-specific lookup: /<pkg>/<version>.
	for pkgName, resp := range f.packages {
		for v, details := range resp.Versions {
			if name == pkgName+"/"+v {
				json.NewEncoder(w).Encode(details)
				return
			}
		}
	}
	if resp, ok := f.packages[name]; ok {
		json.NewEncoder(w).Encode(resp)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{packages: map[string]registryResponse{
		"express": {
			Name:     "express",
			DistTags: distTags{Latest: "4.18.2"},
			Versions: map[string]versionDetails{
				"4.18.2": {
					Name:    "express",
					Version: "4.18.2",
					Dependencies: map[string]string{
						"body-parser": "1.20.1",
						"cookie":      "0.5.0",
					},
				},
				"3.0.0": {
					Name:         "express",
					Version:      "3.0.0",
					Dependencies: map[string]string{"connect": "2.7.2"},
				},
			},
		},
		"leftpad": {
			Name:     "leftpad",
			DistTags: distTags{Latest: "0.0.1"},
			Versions: map[string]versionDetails{
				"0.0.1": {Name: "leftpad", Version: "0.0.1"},
			},
		},
		"untagged": {
			Name: "untagged",
			Versions: map[string]versionDetails{
				"1.0.0": {Name: "untagged", Version: "1.0.0"},
				"2.0.0": {Name: "untagged", Version: "2.0.0", Dependencies: map[string]string{"dep": "1.0.0"}},
			},
		},
	}}
}

func newTestSetup(t *testing.T, opts ...Option) (*Client, *fakeRegistry) {
	t.Helper()
	reg := newFakeRegistry()
	srv := httptest.NewServer(reg)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, cache.NewNullCache(), time.Hour, opts...), reg
}

func TestFetchLatest(t *testing.T) {
	c, _ := newTestSetup(t)

	deps, err := c.Fetch(context.Background(), "express")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := map[string]string{"body-parser": "1.20.1", "cookie": "0.5.0"}
	if len(deps) != len(want) {
		t.Fatalf("deps = %v, want %v", deps, want)
	}
	for name, constraint := range want {
		if deps[name] != constraint {
			t.Errorf("deps[%s] = %q, want %q", name, deps[name], constraint)
		}
	}
}

func TestFetchNoDependencies(t *testing.T) {
	c, _ := newTestSetup(t)

	deps, err := c.Fetch(context.Background(), "leftpad")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if deps == nil {
		t.Fatal("deps = nil, want empty map")
	}
	if len(deps) != 0 {
		t.Errorf("deps = %v, want empty", deps)
	}
}

func TestFetchVersionHint(t *testing.T) {
	c, reg := newTestSetup(t, WithVersionHint("express", "3.0.0"))

	deps, err := c.Fetch(context.Background(), "express")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if deps["connect"] != "2.7.2" {
		t.Errorf("deps = %v, want pinned 3.0.0 manifest", deps)
	}
	// A pinned version skips the dist-tags lookup entirely.
	for _, path := range reg.requests {
		if path == "/express" {
			t.Error("pinned lookup still resolved dist-tags")
		}
	}
}

func TestFetchLatestHintResolvesDistTags(t *testing.T) {
	c, _ := newTestSetup(t, WithVersionHint("express", "latest"))

	deps, err := c.Fetch(context.Background(), "express")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := deps["body-parser"]; !ok {
		t.Errorf("deps = %v, want latest (4.18.2) manifest", deps)
	}
}

func TestFetchNormalizesName(t *testing.T) {
	c, _ := newTestSetup(t)

	deps, err := c.Fetch(context.Background(), "  Express  ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := deps["body-parser"]; !ok {
		t.Errorf("deps = %v, want express manifest", deps)
	}
}

func TestFetchFallsBackToHighestVersion(t *testing.T) {
	c, _ := newTestSetup(t)

	deps, err := c.Fetch(context.Background(), "untagged")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if deps["dep"] != "1.0.0" {
		t.Errorf("deps = %v, want 2.0.0 manifest via highest-version fallback", deps)
	}
}

func TestFetchUnknownPackage(t *testing.T) {
	c, _ := newTestSetup(t)

	_, err := c.Fetch(context.Background(), "no-such-package")
	if !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchCachesMetadata(t *testing.T) {
	reg := newFakeRegistry()
	srv := httptest.NewServer(reg)
	t.Cleanup(srv.Close)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c := NewClient(srv.URL, store, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), "express"); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	// One dist-tags lookup plus one manifest lookup, everything else cached.
	if len(reg.requests) != 2 {
		t.Errorf("registry hit %d times, want 2: %v", len(reg.requests), reg.requests)
	}
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewClient("", cache.NewNullCache(), time.Hour)
	if c.baseURL != DefaultRegistryURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultRegistryURL)
	}
}
