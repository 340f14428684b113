package dataflow

import (
	"strings"
	"testing"

	"github.com/matzehuels/vegadeck/pkg/spec"
)

func sampleDoc() spec.Document {
	return spec.Document{
		"data": []any{
			map[string]any{
				"name": "raw",
				"url":  map[string]any{"%type%": "elasticsearch", "index": "logs-*"},
			},
			map[string]any{
				"name":   "trimmed",
				"source": "raw",
			},
			map[string]any{
				"name":   "joined",
				"source": []any{"trimmed"},
				"transform": []any{
					map[string]any{"type": "lookup", "from": "lookup_table", "key": "id"},
				},
			},
			map[string]any{
				"name":   "inline",
				"values": []any{1.0, 2.0, 3.0},
			},
		},
		"marks": []any{
			map[string]any{
				"type": "group",
				"data": []any{
					map[string]any{"name": "nested", "url": "https://example.com/data.csv"},
				},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	g := Build(sampleDoc())

	wantKinds := map[string]Kind{
		"raw":          KindURL,
		"trimmed":      KindSource,
		"joined":       KindSource,
		"inline":       KindValues,
		"nested":       KindURL,
		"lookup_table": KindMissing,
	}
	if len(g.Nodes()) != len(wantKinds) {
		t.Fatalf("got %d nodes, want %d", len(g.Nodes()), len(wantKinds))
	}
	for id, kind := range wantKinds {
		n, ok := g.Node(id)
		if !ok {
			t.Errorf("node %q missing", id)
			continue
		}
		if n.Kind != kind {
			t.Errorf("node %q kind = %q, want %q", id, n.Kind, kind)
		}
	}

	raw, _ := g.Node("raw")
	if raw.Type != "elasticsearch" || raw.Detail != "logs-*" {
		t.Errorf("raw = %q/%q, want elasticsearch/logs-*", raw.Type, raw.Detail)
	}
	nested, _ := g.Node("nested")
	if nested.Type != "raw" || nested.Detail != "https://example.com/data.csv" {
		t.Errorf("nested = %q/%q, want raw url", nested.Type, nested.Detail)
	}
	inline, _ := g.Node("inline")
	if inline.Detail != "3 rows" {
		t.Errorf("inline detail = %q, want \"3 rows\"", inline.Detail)
	}

	wantEdges := []Edge{
		{From: "raw", To: "trimmed"},
		{From: "trimmed", To: "joined"},
		{From: "lookup_table", To: "joined", Label: "lookup"},
	}
	if len(g.Edges()) != len(wantEdges) {
		t.Fatalf("edges = %v, want %v", g.Edges(), wantEdges)
	}
	for i, want := range wantEdges {
		if g.Edges()[i] != want {
			t.Errorf("edge %d = %v, want %v", i, g.Edges()[i], want)
		}
	}
}

func TestBuildAnonymousStanza(t *testing.T) {
	g := Build(spec.Document{
		"data": map[string]any{"url": "https://example.com/a.json"},
	})
	n, ok := g.Node("dataset_0")
	if !ok {
		t.Fatalf("nodes = %v, want synthesized dataset_0", g.Nodes())
	}
	if n.Kind != KindURL {
		t.Errorf("kind = %q, want url", n.Kind)
	}
}

func TestBuildConflict(t *testing.T) {
	g := Build(spec.Document{
		"data": []any{
			map[string]any{
				"name":   "bad",
				"url":    map[string]any{"index": "x"},
				"values": []any{1.0},
			},
		},
	})
	n, _ := g.Node("bad")
	if n == nil || !n.Conflict {
		t.Fatalf("node = %+v, want conflict flagged", n)
	}
}

func TestBuildDatasets(t *testing.T) {
	g := Build(spec.Document{
		"datasets": map[string]any{
			"pop": []any{map[string]any{"a": 1.0}, map[string]any{"a": 2.0}},
		},
		"data": map[string]any{"name": "pop"},
	})
	n, ok := g.Node("pop")
	if !ok {
		t.Fatal("pop node missing")
	}
	if n.Kind != KindValues || n.Detail != "2 rows" {
		t.Errorf("pop = %q/%q, want values with 2 rows", n.Kind, n.Detail)
	}
	if len(g.Nodes()) != 1 {
		t.Errorf("got %d nodes, want the reference merged into one", len(g.Nodes()))
	}
}

func TestBuildDoesNotModifyDoc(t *testing.T) {
	doc := spec.Document{
		"data": []any{
			map[string]any{"name": "raw", "url": map[string]any{"%type%": "url", "url": "https://example.com"}},
		},
	}
	Build(doc)
	url := doc["data"].([]any)[0].(map[string]any)["url"].(map[string]any)
	if url["%type%"] != "url" {
		t.Errorf("url descriptor modified: %v", url)
	}
}

func TestToDOT(t *testing.T) {
	g := Build(sampleDoc())

	t.Run("simple labels", func(t *testing.T) {
		dot := ToDOT(g, Options{})
		for _, want := range []string{
			`"raw" [label="raw", fillcolor=lightblue];`,
			`"trimmed" [label="trimmed", fillcolor=lightgrey];`,
			`"raw" -> "trimmed";`,
			`"lookup_table" -> "joined" [label="lookup", style=dashed];`,
		} {
			if !strings.Contains(dot, want) {
				t.Errorf("DOT output missing %q\n%s", want, dot)
			}
		}
	})

	t.Run("detailed labels", func(t *testing.T) {
		dot := ToDOT(g, Options{Detailed: true})
		for _, want := range []string{
			"url (elasticsearch)",
			"logs-*",
			"3 rows",
		} {
			if !strings.Contains(dot, want) {
				t.Errorf("detailed DOT output missing %q", want)
			}
		}
	})

	t.Run("conflicts are highlighted", func(t *testing.T) {
		conflicted := Build(spec.Document{
			"data": []any{
				map[string]any{"name": "bad", "url": map[string]any{}, "values": []any{}},
			},
		})
		dot := ToDOT(conflicted, Options{})
		if !strings.Contains(dot, "color=red, penwidth=2") {
			t.Errorf("DOT output missing conflict styling:\n%s", dot)
		}
	})
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>
<svg width="120pt" height="60pt" viewBox="0.00 0.00 120.00 60.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)
	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 120.00 60.00"`) {
		t.Errorf("viewBox not normalized:\n%s", got)
	}
	if !strings.Contains(got, `width="120" height="60"`) {
		t.Errorf("pixel size not applied:\n%s", got)
	}

	plain := []byte(`<svg xmlns="x"><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should pass through unchanged")
	}
}
