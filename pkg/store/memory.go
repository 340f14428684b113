package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps specs in process memory. Intended for development
// and tests; contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	specs map[string]SavedSpec
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{specs: make(map[string]SavedSpec)}
}

// Get retrieves a spec by ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*SavedSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.specs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// List returns all specs ordered by creation time, then ID for stability.
func (m *MemoryStore) List(_ context.Context) ([]*SavedSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*SavedSpec, 0, len(m.specs))
	for _, s := range m.specs {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Save stores a copy of the spec.
func (m *MemoryStore) Save(_ context.Context, s *SavedSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
	m.specs[s.ID] = *s
	return nil
}

// Delete removes a spec.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.specs[id]; !ok {
		return ErrNotFound
	}
	delete(m.specs, id)
	return nil
}

// Close drops all stored specs.
func (m *MemoryStore) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs = make(map[string]SavedSpec)
	return nil
}
