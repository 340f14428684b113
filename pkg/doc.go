// Package pkg provides the core libraries for Vegadeck specification
// normalization.
//
// # Overview
//
// Vegadeck prepares Vega and Vega-Lite chart specifications for embedding.
// A host application hands over a raw specification (relaxed HJSON is
// accepted) and gets back a fully resolved document plus the derived
// settings an embedder needs: renderer, tooltip behavior, container layout,
// and map configuration. The pkg directory is organized into four main
// areas:
//
//  1. [spec] / [vega] - Document model and dialect detection
//  2. [normalize] - The normalization pipeline itself
//  3. [loaders] / [vegalite] - Remote data resolution and Vega-Lite compilation
//  4. [cache] / [store] / [config] - Infrastructure backends
//
// # Architecture
//
// The typical data flow through Vegadeck:
//
//	Raw specification (HJSON or JSON)
//	         ↓
//	    [spec] package (parse into a Document)
//	         ↓
//	    [normalize] package (host config, tooltips, colors, controls, sizing)
//	         ↓
//	    [loaders] package (resolve elasticsearch/EMS/url data stanzas)
//	         ↓
//	    [vegalite] package (compile Vega-Lite sources to full Vega)
//	         ↓
//	    Resolved spec + layout/tooltip/map configs + warnings
//
// # Quick Start
//
// Normalize a specification with default settings:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/vegadeck/pkg/normalize"
//	)
//
//	result := normalize.Normalize(context.Background(), raw, normalize.Options{})
//	if result.Err != nil {
//	    // The spec itself was unusable; result.Err carries an error code.
//	}
//	// result.Spec, result.Renderer, result.Tooltip, result.Layout, ...
//
// Wire remote data resolution:
//
//	backend := cache.NewMemoryCache()
//	registry := loaders.NewRegistry()
//	registry.Register(elasticsearch.New("http://localhost:9200", backend))
//	registry.Register(emsfile.New("", backend))
//	registry.Register(urlfetch.New(backend))
//
//	result := normalize.Normalize(ctx, raw, normalize.Options{Loaders: registry})
//
// # Main Packages
//
// ## Document Model
//
// [spec] - The parsed specification as a Document (a JSON object tree),
// HJSON parsing, typed field accessors, and the data-stanza walker shared
// by the pipeline and the loaders.
//
// [vega] - Dialect detection from $schema URLs (Vega vs Vega-Lite),
// default colors and schemes, and the schema version constants.
//
// ## Pipeline
//
// [normalize] - The single-shot normalization pipeline: parse, detect
// schema, extract host config, derive tooltips, apply default colors,
// place signal controls, configure map mode, resolve data, compile
// Vega-Lite, calculate sizing. Fatal findings are reported on the Result
// rather than as Go errors; non-fatal findings become warnings.
//
// [dataflow] - Data-flow graph over a specification's data stanzas with
// Graphviz DOT and SVG rendering. Feeds the CLI's graph and inspect
// commands.
//
// ## Data Resolution
//
// [loaders] - Registry and tree walk for typed url descriptors, with one
// subpackage per descriptor type: [loaders/elasticsearch] queries a
// cluster, [loaders/emsfile] fetches Elastic Maps Service catalog layers,
// [loaders/urlfetch] loads plain JSON documents.
//
// [vegalite] - The Compiler interface and the ExecCompiler, which shells
// out to an external vega-lite compiler command.
//
// [httputil] - Shared HTTP client with response caching, retry with
// backoff, and rate-limit handling. All loaders build on it.
//
// ## Infrastructure
//
// [cache] - Response cache backends: file (CLI), memory, Redis (server),
// null, plus scoped prefix views over a shared backend.
//
// [store] - Saved-specification persistence for the HTTP API: memory and
// MongoDB backends.
//
// [config] - TOML configuration for the server and CLI: listen address,
// backend selection, loader endpoints, compiler command, and normalizer
// defaults.
//
// [errors] - Coded errors (INVALID_SPEC, UNRECOGNIZED_VALUE, ...) shared
// across the pipeline, loaders, and API responses.
//
// [observability] - Hook points for pipeline stages, loader batches,
// HTTP requests, and cache activity. No-op by default.
//
// [buildinfo] - Version metadata injected at build time via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/normalize/...          # Specific package
//	go test -run Example                 # Examples only
//
// [spec]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/spec
// [vega]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/vega
// [normalize]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/normalize
// [dataflow]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/dataflow
// [loaders]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/loaders
// [loaders/elasticsearch]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/loaders/elasticsearch
// [loaders/emsfile]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/loaders/emsfile
// [loaders/urlfetch]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/loaders/urlfetch
// [vegalite]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/vegalite
// [httputil]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/httputil
// [cache]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/vegadeck/pkg/buildinfo
package pkg
