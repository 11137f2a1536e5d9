package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/depscope/pkg/depgraph"
)

type stubSource map[string]map[string]string

func (s stubSource) Fetch(ctx context.Context, pkg string) (map[string]string, error) {
	if deps, ok := s[pkg]; ok {
		return deps, nil
	}
	return map[string]string{}, nil
}

func buildFrom(src stubSource, root string) *depgraph.Graph {
	g := depgraph.New("")
	g.Build(context.Background(), root, src)
	return g
}

func TestToDOT(t *testing.T) {
	g := buildFrom(stubSource{
		"app": {"lib": "1.0.0", "util": "1.0.0"},
		"lib": {"util": "1.0.0"},
	}, "app")

	out := ToDOT(g, "app")

	for _, want := range []string{
		"digraph dependencies {",
		"rankdir=TB;",
		`"app" [fillcolor="#e1f5ff"`,
		`"lib";`,
		`"util";`,
		`"lib" -> "util";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
	// Root edges carry the emphasized style.
	if !strings.Contains(out, `"app" -> "lib" [color="#0277bd"`) {
		t.Errorf("root edge not emphasized:\n%s", out)
	}
}

func TestToDOTCycleEdges(t *testing.T) {
	g := buildFrom(stubSource{
		"a": {"b": "1.0.0"},
		"b": {"a": "1.0.0"},
	}, "a")

	out := ToDOT(g, "a")

	if !strings.Contains(out, `"a" -> "b" [color="#d32f2f", style=dashed`) {
		t.Errorf("cycle edge a->b not dashed red:\n%s", out)
	}
	if !strings.Contains(out, `"b" -> "a" [color="#d32f2f", style=dashed`) {
		t.Errorf("cycle edge b->a not dashed red:\n%s", out)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := buildFrom(stubSource{
		"app": {"c": "1.0.0", "a": "1.0.0", "b": "1.0.0"},
	}, "app")

	first := ToDOT(g, "app")
	for i := 0; i < 5; i++ {
		if got := ToDOT(g, "app"); got != first {
			t.Fatal("repeated renders differ")
		}
	}
}

func TestToDOTEmptyGraph(t *testing.T) {
	g := depgraph.New("")

	out := ToDOT(g, "app")
	if !strings.HasPrefix(out, "digraph dependencies {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("empty graph should still be valid DOT:\n%s", out)
	}
}

func TestRenderSVG(t *testing.T) {
	g := buildFrom(stubSource{
		"app": {"lib": "1.0.0"},
	}, "app")

	svg, err := RenderSVG(context.Background(), ToDOT(g, "app"))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output does not look like SVG")
	}
	if !bytes.Contains(svg, []byte("app")) {
		t.Error("SVG missing root node label")
	}
}

func TestRenderSVGInvalidInput(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "this is not dot"); err == nil {
		t.Fatal("expected error for invalid DOT")
	}
}
