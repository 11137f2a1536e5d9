package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/depgraph"
)

type stubSource map[string]map[string]string

func (s stubSource) Fetch(ctx context.Context, pkg string) (map[string]string, error) {
	if deps, ok := s[pkg]; ok {
		return deps, nil
	}
	return map[string]string{}, nil
}

func newTestServer(t *testing.T, src depgraph.Source, factoryErr error) *httptest.Server {
	t.Helper()
	factory := func(pkg, version string) (depgraph.Source, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return src, nil
	}
	srv := httptest.NewServer(New(log.New(io.Discard), factory).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, stubSource{}, nil)

	var body map[string]string
	if code := getJSON(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAnalyze(t *testing.T) {
	srv := newTestServer(t, stubSource{
		"app": {"lib": "1.0.0"},
		"lib": {"util": "1.0.0"},
	}, nil)

	var snap depgraph.Snapshot
	if code := getJSON(t, srv.URL+"/api/analyze?package=app", &snap); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if snap.Root != "app" {
		t.Errorf("Root = %q, want app", snap.Root)
	}
	if snap.ID == "" {
		t.Error("snapshot missing analysis ID")
	}
	if !slices.Equal(snap.Nodes, []string{"app", "lib", "util"}) {
		t.Errorf("Nodes = %v", snap.Nodes)
	}
	if len(snap.Edges) != 2 {
		t.Errorf("Edges = %v, want 2 edges", snap.Edges)
	}
	if len(snap.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", snap.Cycles)
	}
}

func TestAnalyzeWithFilter(t *testing.T) {
	srv := newTestServer(t, stubSource{
		"app": {"lib": "1.0.0", "lib-test": "1.0.0"},
	}, nil)

	var snap depgraph.Snapshot
	if code := getJSON(t, srv.URL+"/api/analyze?package=app&filter=test", &snap); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if slices.Contains(snap.Nodes, "lib-test") {
		t.Errorf("filtered package in Nodes: %v", snap.Nodes)
	}
}

func TestAnalyzeReportsCycles(t *testing.T) {
	srv := newTestServer(t, stubSource{
		"a": {"b": "1.0.0"},
		"b": {"a": "1.0.0"},
	}, nil)

	var snap depgraph.Snapshot
	if code := getJSON(t, srv.URL+"/api/analyze?package=a", &snap); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(snap.Cycles) != 1 {
		t.Fatalf("Cycles = %v, want 1", snap.Cycles)
	}
	if want := []string{"a", "b", "a"}; !slices.Equal(snap.Cycles[0], want) {
		t.Errorf("cycle = %v, want %v", snap.Cycles[0], want)
	}
}

func TestAnalyzeMissingPackage(t *testing.T) {
	srv := newTestServer(t, stubSource{}, nil)

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/analyze", &body); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if body["error"] == "" {
		t.Error("missing error message in response")
	}
}

func TestAnalyzeSourceFailure(t *testing.T) {
	srv := newTestServer(t, nil, errors.New("fixture unreadable"))

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/analyze?package=app", &body); code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if body["error"] != "fixture unreadable" {
		t.Errorf("error = %q", body["error"])
	}
}
