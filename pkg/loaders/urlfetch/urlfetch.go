// Package urlfetch loads data stanzas that point at arbitrary JSON
// documents over HTTP:
//
//	{"url": {"%type%": "url", "url": "https://example.com/data.json"}}
//
// The document is fetched and becomes the stanza's values. Only http
// and https URLs without credentials are accepted.
package urlfetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/httputil"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// Loader fetches JSON documents for url descriptors.
type Loader struct {
	client  *httputil.Client
	refresh bool
}

// New creates a loader. Fetched documents are cached briefly in
// backend; pass nil to disable caching.
func New(backend cache.Cache) *Loader {
	return &Loader{
		client: httputil.NewClient(backend, "url:", cache.DataTTL, nil),
	}
}

// SetRefresh makes every batch bypass the response cache.
func (l *Loader) SetRefresh(refresh bool) { l.refresh = refresh }

// Name returns the descriptor type this loader handles.
func (l *Loader) Name() string { return "url" }

// Resolve validates the target URL before any fetch runs.
func (l *Loader) Resolve(node *loaders.Node) error {
	target, ok := spec.String(node.URL, "url")
	if !ok || target == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "url descriptor needs a url field")
	}
	return errors.ValidateFetchURL(target)
}

// PopulateBatch fetches every node's document, fanning out across the
// batch. The first failing fetch cancels the rest.
func (l *Loader) PopulateBatch(ctx context.Context, nodes []*loaders.Node) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, node := range nodes {
		g.Go(func() error {
			return l.populate(ctx, node)
		})
	}
	return g.Wait()
}

func (l *Loader) populate(ctx context.Context, node *loaders.Node) error {
	target, _ := spec.String(node.URL, "url")

	var values any
	err := l.client.Cached(ctx, target, l.refresh, &values, func() error {
		return l.client.Get(ctx, target, &values)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetching %s", target)
	}
	node.Data["values"] = values
	return nil
}

// Ensure Loader implements loaders.Loader.
var _ loaders.Loader = (*Loader)(nil)
