// Package loaders resolves remote data references in chart
// specifications.
//
// A specification can point a data stanza at remote content through a
// typed url descriptor:
//
//	{"data": {"url": {"%type%": "elasticsearch", "index": "logs-*", "body": {...}}}}
//
// Each descriptor type is handled by a [Loader] registered in a
// [Registry]. [ResolveAll] walks the tree, hands every descriptor to
// its loader, and runs the per-type batches concurrently.
package loaders

import (
	"context"
	"sync"

	"github.com/matzehuels/vegadeck/pkg/errors"
)

// TypeKey is the discriminator field inside a url descriptor that
// selects the loader. It is removed from the descriptor before
// dispatch.
const TypeKey = "%type%"

// DefaultType is assumed when a url descriptor carries no TypeKey.
const DefaultType = "elasticsearch"

// Node is one data stanza whose url descriptor was claimed by a loader.
// The walk removes the url descriptor from the stanza before dispatch,
// so loaders write their results (values, or a concrete url plus
// format) straight into Data.
type Node struct {
	// Data is the data stanza itself, mutated in place.
	Data map[string]any

	// URL is the extracted url descriptor with TypeKey removed.
	URL map[string]any
}

// Loader resolves url descriptors of a single type.
type Loader interface {
	// Name returns the TypeKey value this loader handles.
	Name() string

	// Resolve validates a node's url descriptor. It is called
	// sequentially during the tree walk, before any batch runs.
	Resolve(node *Node) error

	// PopulateBatch fetches and writes final data into every node of
	// a run. It is called at most once per run and may fan out
	// internally.
	PopulateBatch(ctx context.Context, nodes []*Node) error
}

// Registry holds the known loaders in registration order. The order is
// the settle order of [ResolveAll], so it determines which failure wins
// when several batches fail at once.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	loaders map[string]Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader. Registering two loaders with the same name is
// a configuration mistake and fails.
func (r *Registry) Register(l Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := l.Name()
	if _, exists := r.loaders[name]; exists {
		return errors.New(errors.ErrCodeInvalidConfig, "loader %q already registered", name)
	}
	r.loaders[name] = l
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the loader registered under name.
func (r *Registry) Lookup(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	return l, ok
}

// Names returns the loader names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// typeName extracts and removes the TypeKey discriminator from a url
// descriptor.
func typeName(url map[string]any) (string, error) {
	raw, ok := url[TypeKey]
	if !ok {
		return DefaultType, nil
	}
	delete(url, TypeKey)
	s, ok := raw.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupportedURLType, "unsupported url type %v", raw)
	}
	return s, nil
}

// unsupported builds the failure for a descriptor type nobody handles.
func unsupported(name string) error {
	return errors.New(errors.ErrCodeUnsupportedURLType, "unsupported url type %q", name)
}
