// Package elasticsearch loads data stanzas whose url descriptors name
// an Elasticsearch query:
//
//	{"url": {"%type%": "elasticsearch", "index": "logs-*", "body": {...}}}
//
// Each node's query is POSTed to the cluster's _search endpoint and the
// raw response becomes the stanza's values.
package elasticsearch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/httputil"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// DefaultEndpoint is used when no cluster address is configured.
const DefaultEndpoint = "http://localhost:9200"

// Loader resolves elasticsearch url descriptors against one cluster.
type Loader struct {
	endpoint string
	client   *httputil.Client
	refresh  bool
}

// New creates a loader for the cluster at endpoint. Responses are
// cached briefly in backend so repeated normalizations of the same
// specification skip the cluster; pass nil to disable caching.
func New(endpoint string, backend cache.Cache) *Loader {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Loader{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   httputil.NewClient(backend, "es:", cache.DataTTL, nil),
	}
}

// SetRefresh makes every batch bypass the response cache.
func (l *Loader) SetRefresh(refresh bool) { l.refresh = refresh }

// Name returns the descriptor type this loader handles.
func (l *Loader) Name() string { return "elasticsearch" }

// Resolve validates the descriptor fields before any query runs.
func (l *Loader) Resolve(node *loaders.Node) error {
	if raw, ok := node.URL["index"]; ok {
		if _, ok := raw.(string); !ok {
			return errors.New(errors.ErrCodeInvalidParameter, "elasticsearch index must be a string, got %T", raw)
		}
	}
	if raw, ok := node.URL["body"]; ok {
		if _, ok := raw.(map[string]any); !ok {
			return errors.New(errors.ErrCodeInvalidParameter, "elasticsearch body must be an object, got %T", raw)
		}
	}
	return nil
}

// PopulateBatch runs every node's query, fanning out across the batch.
// The first failing query cancels the rest.
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
	index, _ := spec.String(node.URL, "index")
	body, ok := spec.Mapping(node.URL, "body")
	if !ok {
		body = map[string]any{}
	}

	var result map[string]any
	err := l.client.Cached(ctx, l.cacheKey(index, body), l.refresh, &result, func() error {
		return l.client.PostJSON(ctx, l.searchURL(index), body, &result)
	})
	if err != nil {
		return errors.Wrap(codeFor(err), err, "elasticsearch search against %q failed", indexLabel(index))
	}
	node.Data["values"] = result
	return nil
}

// searchURL builds the _search endpoint for an index pattern. An empty
// index searches the whole cluster.
func (l *Loader) searchURL(index string) string {
	if index == "" {
		return l.endpoint + "/_search"
	}
	return fmt.Sprintf("%s/%s/_search", l.endpoint, index)
}

func (l *Loader) cacheKey(index string, body map[string]any) string {
	raw, _ := json.Marshal(body)
	return index + ":" + string(raw)
}

func indexLabel(index string) string {
	if index == "" {
		return "_all"
	}
	return index
}

func codeFor(err error) errors.Code {
	if stderrors.Is(err, httputil.ErrNotFound) {
		return errors.ErrCodeNotFound
	}
	return errors.ErrCodeNetwork
}

// Ensure Loader implements loaders.Loader.
var _ loaders.Loader = (*Loader)(nil)
