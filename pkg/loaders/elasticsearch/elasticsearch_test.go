package elasticsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/loaders"
)

func TestResolve(t *testing.T) {
	l := New("", nil)

	tests := []struct {
		name    string
		url     map[string]any
		wantErr bool
	}{
		{"index and body", map[string]any{"index": "logs-*", "body": map[string]any{}}, false},
		{"empty descriptor", map[string]any{}, false},
		{"index only", map[string]any{"index": "metrics-*"}, false},
		{"index wrong type", map[string]any{"index": 5.0}, true},
		{"body wrong type", map[string]any{"body": []any{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Resolve(&loaders.Node{Data: map[string]any{}, URL: tt.url})
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("error = %v, want INVALID_PARAMETER", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPopulateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/logs-*/_search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body decode: %v", err)
		}
		if body["size"] != 100.0 {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"hits": {"total": 3, "hits": []}}`))
	}))
	defer srv.Close()

	l := New(srv.URL, nil)
	node := &loaders.Node{
		Data: map[string]any{"name": "events"},
		URL:  map[string]any{"index": "logs-*", "body": map[string]any{"size": 100.0}},
	}

	if err := l.PopulateBatch(context.Background(), []*loaders.Node{node}); err != nil {
		t.Fatalf("PopulateBatch error: %v", err)
	}

	values, ok := node.Data["values"].(map[string]any)
	if !ok {
		t.Fatalf("values = %T", node.Data["values"])
	}
	hits := values["hits"].(map[string]any)
	if hits["total"] != 3.0 {
		t.Errorf("hits.total = %v", hits["total"])
	}
}

func TestPopulateBatchEmptyIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_search" {
			t.Errorf("path = %s, want /_search", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	l := New(srv.URL, nil)
	node := &loaders.Node{Data: map[string]any{}, URL: map[string]any{}}
	if err := l.PopulateBatch(context.Background(), []*loaders.Node{node}); err != nil {
		t.Fatalf("PopulateBatch error: %v", err)
	}
}

func TestPopulateBatchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := New(srv.URL, nil)
	node := &loaders.Node{Data: map[string]any{}, URL: map[string]any{"index": "missing"}}
	err := l.PopulateBatch(context.Background(), []*loaders.Node{node})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestPopulateBatchFanOut(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"hits": {}}`))
	}))
	defer srv.Close()

	l := New(srv.URL, nil)
	nodes := []*loaders.Node{
		{Data: map[string]any{}, URL: map[string]any{"index": "a"}},
		{Data: map[string]any{}, URL: map[string]any{"index": "b"}},
		{Data: map[string]any{}, URL: map[string]any{"index": "c"}},
	}
	if err := l.PopulateBatch(context.Background(), nodes); err != nil {
		t.Fatalf("PopulateBatch error: %v", err)
	}
	if requests.Load() != 3 {
		t.Errorf("requests = %d, want 3", requests.Load())
	}
	for i, node := range nodes {
		if _, ok := node.Data["values"]; !ok {
			t.Errorf("node %d not populated", i)
		}
	}
}

func TestPopulateBatchCachesResponses(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"hits": {}}`))
	}))
	defer srv.Close()

	backend := cache.NewMemoryCache()
	defer backend.Close()
	l := New(srv.URL, backend)

	run := func() {
		node := &loaders.Node{Data: map[string]any{}, URL: map[string]any{"index": "logs-*"}}
		if err := l.PopulateBatch(context.Background(), []*loaders.Node{node}); err != nil {
			t.Fatalf("PopulateBatch error: %v", err)
		}
	}
	run()
	run()

	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1 (second run cached)", requests.Load())
	}
}
