package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewSavedSpec(t *testing.T) {
	s := New("traffic", `{"mark": "bar"}`)

	if s.ID == "" {
		t.Fatal("New() did not assign an ID")
	}
	if s.Name != "traffic" {
		t.Errorf("Name = %q, want %q", s.Name, "traffic")
	}
	if s.Spec != `{"mark": "bar"}` {
		t.Errorf("Spec = %q", s.Spec)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
	if !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v on a fresh spec", s.CreatedAt, s.UpdatedAt)
	}

	other := New("traffic", `{"mark": "bar"}`)
	if other.ID == s.ID {
		t.Error("two specs share an ID")
	}
}

func TestMemoryStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close(ctx)

	saved := New("cpu", `{"mark": "line"}`)
	if err := ms.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := ms.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "cpu" || got.Spec != `{"mark": "line"}` {
		t.Errorf("Get() = %+v", got)
	}

	// The store hands out copies.
	got.Name = "mutated"
	again, err := ms.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if again.Name != "cpu" {
		t.Errorf("mutating a returned spec changed the store: Name = %q", again.Name)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close(ctx)

	if _, err := ms.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveUpdates(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close(ctx)

	saved := New("mem", `{"a": 1}`)
	saved.CreatedAt = saved.CreatedAt.Add(-time.Hour)
	saved.UpdatedAt = saved.CreatedAt
	if err := ms.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	saved.Spec = `{"a": 2}`
	if err := ms.Save(ctx, saved); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := ms.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Spec != `{"a": 2}` {
		t.Errorf("Spec = %q, want updated value", got.Spec)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	all, err := ms.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d specs after an upsert, want 1", len(all))
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close(ctx)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"third", "first", "second"}
	offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
	for i, name := range names {
		s := New(name, "{}")
		s.CreatedAt = base.Add(offsets[i])
		if err := ms.Save(ctx, s); err != nil {
			t.Fatalf("Save(%q) error: %v", name, err)
		}
	}

	all, err := ms.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(all) != len(want) {
		t.Fatalf("List() returned %d specs, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, all[i].Name, name)
		}
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close(ctx)

	saved := New("gone", "{}")
	if err := ms.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := ms.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := ms.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) = %v, want ErrNotFound", err)
	}
	if err := ms.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreClose(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if err := ms.Save(ctx, New("ephemeral", "{}")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := ms.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	all, err := ms.List(ctx)
	if err != nil {
		t.Fatalf("List() after Close error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() after Close returned %d specs, want 0", len(all))
	}
}
