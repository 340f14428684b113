package loaders

import (
	"context"
	"time"

	"github.com/matzehuels/vegadeck/pkg/observability"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// ResolveAll finds every remote data reference in doc and populates it
// through the registered loaders.
//
// The walk is sequential: each data stanza with a url descriptor loses
// the descriptor, gets its loader's Resolve check, and is queued. The
// queued batches then all start concurrently, one PopulateBatch call
// per loader. Batches settle in registration order and the first
// failure in that order is returned; batches still in flight behind a
// failure keep running in the background and their results are
// discarded with the document.
func ResolveAll(ctx context.Context, reg *Registry, doc spec.Document) error {
	groups := make(map[string][]*Node)

	err := spec.WalkDataURLs(doc, func(data map[string]any) error {
		url, _ := spec.Mapping(data, "url")
		delete(data, "url")

		name, err := typeName(url)
		if err != nil {
			return err
		}
		loader, ok := reg.Lookup(name)
		if !ok {
			return unsupported(name)
		}

		node := &Node{Data: data, URL: url}
		if err := loader.Resolve(node); err != nil {
			return err
		}
		groups[name] = append(groups[name], node)
		return nil
	})
	if err != nil {
		return err
	}

	type batch struct {
		name string
		done chan error
	}
	var batches []batch
	for _, name := range reg.Names() {
		nodes := groups[name]
		if len(nodes) == 0 {
			continue
		}
		loader, _ := reg.Lookup(name)
		done := make(chan error, 1)
		go func() {
			start := time.Now()
			observability.Loader().OnBatchStart(ctx, name, len(nodes))
			err := loader.PopulateBatch(ctx, nodes)
			observability.Loader().OnBatchComplete(ctx, name, len(nodes), time.Since(start), err)
			done <- err
		}()
		batches = append(batches, batch{name: name, done: done})
	}

	for _, b := range batches {
		if err := <-b.done; err != nil {
			return err
		}
	}
	return nil
}
