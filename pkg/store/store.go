// Package store persists raw chart specifications.
//
// Specs are stored exactly as written (HJSON allowed) and normalized
// fresh per rendering request; a normalized document is never persisted.
// Two backends are provided:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for production deployments
//
// # Usage
//
// Create a store and save a spec:
//
//	st := store.NewMemoryStore()
//	saved := store.New("daily traffic", rawSpec)
//	if err := st.Save(ctx, saved); err != nil {
//	    return err
//	}
//
//	specs, err := st.List(ctx)
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a spec does not exist.
var ErrNotFound = errors.New("spec not found")

// SavedSpec is one stored chart specification.
type SavedSpec struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Spec      string    `json:"spec" bson:"spec"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for spec storage backends.
type Store interface {
	// Get retrieves a spec by ID. Returns ErrNotFound if it does not
	// exist.
	Get(ctx context.Context, id string) (*SavedSpec, error)

	// List returns all specs ordered by creation time.
	List(ctx context.Context) ([]*SavedSpec, error)

	// Save stores a spec, replacing any existing spec with the same ID.
	// UpdatedAt is refreshed on every call.
	Save(ctx context.Context, s *SavedSpec) error

	// Delete removes a spec. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// New creates a SavedSpec with a fresh ID and timestamps.
func New(name, rawSpec string) *SavedSpec {
	now := time.Now().UTC()
	return &SavedSpec{
		ID:        uuid.NewString(),
		Name:      name,
		Spec:      rawSpec,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
