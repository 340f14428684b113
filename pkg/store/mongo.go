package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// specsCollection is the collection holding saved specs.
const specsCollection = "specs"

// MongoStore persists specs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(specsCollection),
	}, nil
}

// Get retrieves a spec by ID.
func (m *MongoStore) Get(ctx context.Context, id string) (*SavedSpec, error) {
	var s SavedSpec
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find spec %s: %w", id, err)
	}
	return &s, nil
}

// List returns all specs ordered by creation time.
func (m *MongoStore) List(ctx context.Context) ([]*SavedSpec, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	var out []*SavedSpec
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode specs: %w", err)
	}
	return out, nil
}

// Save upserts a spec keyed by its ID.
func (m *MongoStore) Save(ctx context.Context, s *SavedSpec) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save spec %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes a spec.
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete spec %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
