// Package dataflow builds the directed graph of a specification's data
// pipeline: every data stanza becomes a node, and source references and
// lookup transforms become edges. The graph feeds the DOT/SVG output of
// the graph command, which makes it easy to see where a chart's data
// actually comes from before the normalizer resolves it.
package dataflow

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// Kind classifies what a data node is backed by.
type Kind string

const (
	// KindValues is inline literal data.
	KindValues Kind = "values"

	// KindURL is remote data behind a typed url descriptor or a plain
	// url string.
	KindURL Kind = "url"

	// KindSource derives from one or more other datasets.
	KindSource Kind = "source"

	// KindEmpty is a declaration with no backing definition, such as a
	// dataset populated at runtime.
	KindEmpty Kind = "empty"

	// KindMissing marks a referenced dataset the spec never defines.
	KindMissing Kind = "missing"
)

// Node is one dataset in the flow graph.
type Node struct {
	// ID is the dataset name, or a synthesized name for anonymous
	// stanzas.
	ID string

	Kind Kind

	// Type is the loader type of a url-backed node ("elasticsearch",
	// "emsfile", "url", or "raw" for plain string urls).
	Type string

	// Detail is a short human-readable description: an index name, a
	// layer name, a row count.
	Detail string

	// Conflict reports that the stanza mixes more than one of url,
	// values and source.
	Conflict bool
}

// Edge is a data dependency: To consumes From.
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is the data-flow graph of one specification.
type Graph struct {
	nodes []*Node
	edges []Edge
	index map[string]*Node
}

// Nodes returns the nodes in discovery order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the edges in discovery order.
func (g *Graph) Edges() []Edge { return g.edges }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Build walks a decoded specification and assembles its data-flow graph.
// The document is not modified. Stanzas are discovered under any key
// named "data" (arrays included) plus the top-level "datasets" mapping
// of lite specs; anonymous stanzas get synthesized names.
func Build(doc spec.Document) *Graph {
	b := &builder{graph: &Graph{index: map[string]*Node{}}}
	b.walk(doc, "")

	// References to datasets the spec never defines still get a node so
	// the broken edge is visible.
	for _, e := range b.graph.edges {
		if _, ok := b.graph.index[e.From]; !ok {
			missing := b.upsert(e.From)
			missing.Kind = KindMissing
		}
	}
	return b.graph
}

type builder struct {
	graph *Graph
	anon  int
}

func (b *builder) walk(v any, key string) {
	switch val := v.(type) {
	case []any:
		for _, elem := range val {
			b.walk(elem, key)
		}
	case map[string]any:
		if key == "data" {
			b.addStanza(val)
			return
		}
		if key == "datasets" {
			for _, name := range slices.Sorted(maps.Keys(val)) {
				b.addDataset(name, val[name])
			}
			return
		}
		for _, k := range slices.Sorted(maps.Keys(val)) {
			b.walk(val[k], k)
		}
	}
}

func (b *builder) upsert(id string) *Node {
	if n, ok := b.graph.index[id]; ok {
		return n
	}
	n := &Node{ID: id, Kind: KindEmpty}
	b.graph.index[id] = n
	b.graph.nodes = append(b.graph.nodes, n)
	return n
}

// addStanza classifies one data stanza and records its edges.
func (b *builder) addStanza(data map[string]any) {
	id, _ := spec.String(data, "name")
	if id == "" {
		id = fmt.Sprintf("dataset_%d", b.anon)
		b.anon++
	}
	node := b.upsert(id)

	backing := 0
	for _, key := range []string{"url", "values", "source"} {
		if _, present := data[key]; present {
			backing++
		}
	}
	if backing > 1 {
		node.Conflict = true
	}

	switch {
	case data["url"] != nil:
		node.Kind = KindURL
		node.Type, node.Detail = describeURL(data["url"])
	case data["values"] != nil:
		node.Kind = KindValues
		if rows, ok := data["values"].([]any); ok {
			node.Detail = fmt.Sprintf("%d rows", len(rows))
		}
	case data["source"] != nil:
		node.Kind = KindSource
		for _, from := range sourceNames(data["source"]) {
			b.graph.edges = append(b.graph.edges, Edge{From: from, To: id})
		}
	}

	// Lookup transforms pull rows from another dataset.
	if transforms, ok := data["transform"].([]any); ok {
		for _, raw := range transforms {
			t, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if kind, _ := spec.String(t, "type"); kind != "lookup" {
				continue
			}
			if from, ok := spec.String(t, "from"); ok {
				b.graph.edges = append(b.graph.edges, Edge{From: from, To: id, Label: "lookup"})
			}
		}
	}
}

// addDataset records one entry of a lite datasets mapping.
func (b *builder) addDataset(name string, v any) {
	node := b.upsert(name)
	node.Kind = KindValues
	if rows, ok := v.([]any); ok {
		node.Detail = fmt.Sprintf("%d rows", len(rows))
	}
}

// describeURL summarizes a url member without modifying it.
func describeURL(v any) (loaderType, detail string) {
	switch u := v.(type) {
	case string:
		return "raw", u
	case map[string]any:
		loaderType = loaders.DefaultType
		if t, ok := spec.String(u, loaders.TypeKey); ok {
			loaderType = t
		}
		for _, key := range []string{"index", "name", "url"} {
			if d, ok := spec.String(u, key); ok {
				return loaderType, d
			}
		}
		return loaderType, ""
	}
	return "", ""
}

// sourceNames normalizes the source member, which is a dataset name or a
// list of them.
func sourceNames(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		var names []string
		for _, item := range s {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}
