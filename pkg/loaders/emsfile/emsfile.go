// Package emsfile loads data stanzas that reference vector layers from
// the Elastic Maps Service file catalog:
//
//	{"url": {"%type%": "emsfile", "name": "World Countries"}}
//
// The loader fetches the catalog manifest once per batch, looks each
// layer up by name, and writes the layer's concrete file url and format
// back onto the stanza for the renderer to fetch.
package emsfile

import (
	"context"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/httputil"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// DefaultManifestURL points at the public file catalog.
const DefaultManifestURL = "https://vector.maps.elastic.co/v7.6/manifest"

// Manifest is the catalog of available vector layers.
type Manifest struct {
	Layers []Layer `json:"layers"`
}

// Layer describes one downloadable vector file.
type Layer struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Loader resolves emsfile url descriptors against one catalog.
type Loader struct {
	manifestURL string
	client      *httputil.Client
	refresh     bool
}

// New creates a loader reading the catalog at manifestURL. The manifest
// is cached in backend for a day; pass nil to disable caching.
func New(manifestURL string, backend cache.Cache) *Loader {
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	return &Loader{
		manifestURL: manifestURL,
		client:      httputil.NewClient(backend, "ems:", cache.ManifestTTL, nil),
	}
}

// SetRefresh makes every batch re-fetch the manifest.
func (l *Loader) SetRefresh(refresh bool) { l.refresh = refresh }

// Name returns the descriptor type this loader handles.
func (l *Loader) Name() string { return "emsfile" }

// Resolve validates that the descriptor names a layer.
func (l *Loader) Resolve(node *loaders.Node) error {
	name, ok := spec.String(node.URL, "name")
	if !ok || name == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "emsfile url needs a layer name")
	}
	return nil
}

// PopulateBatch fetches the manifest and resolves every queued layer
// name. The manifest fetch happens once regardless of batch size.
func (l *Loader) PopulateBatch(ctx context.Context, nodes []*loaders.Node) error {
	manifest, err := l.fetchManifest(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetching maps catalog manifest")
	}

	byName := make(map[string]Layer, len(manifest.Layers))
	for _, layer := range manifest.Layers {
		byName[layer.Name] = layer
	}

	for _, node := range nodes {
		name, _ := spec.String(node.URL, "name")
		layer, ok := byName[name]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "maps catalog has no layer named %q", name)
		}
		node.Data["url"] = layer.URL
		if layer.Format != "" {
			node.Data["format"] = map[string]any{"type": layer.Format}
		}
	}
	return nil
}

func (l *Loader) fetchManifest(ctx context.Context) (*Manifest, error) {
	var manifest Manifest
	err := l.client.Cached(ctx, l.manifestURL, l.refresh, &manifest, func() error {
		return l.client.Get(ctx, l.manifestURL, &manifest)
	})
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Ensure Loader implements loaders.Loader.
var _ loaders.Loader = (*Loader)(nil)
