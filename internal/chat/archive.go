package chat

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Archive persists session records beyond the process lifetime.
type Archive interface {
	Save(ctx context.Context, rec SessionRecord) error
	Load(ctx context.Context, sessionID string) (*SessionRecord, error)
	List(ctx context.Context, limit int) ([]SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// MongoArchive is a MongoDB-backed session archive.
type MongoArchive struct {
	collection *mongo.Collection
}

// NewMongoArchive creates a MongoArchive over a collection.
func NewMongoArchive(db *mongo.Database, collectionName string) *MongoArchive {
	return &MongoArchive{
		collection: db.Collection(collectionName),
	}
}

// Save upserts a session record keyed by session ID.
func (a *MongoArchive) Save(ctx context.Context, rec SessionRecord) error {
	filter := bson.M{"_id": rec.SessionID}
	opts := options.Replace().SetUpsert(true)
	if _, err := a.collection.ReplaceOne(ctx, filter, rec, opts); err != nil {
		return fmt.Errorf("failed to archive session '%s': %w", rec.SessionID, err)
	}
	return nil
}

// Load retrieves an archived session, returning nil when absent.
func (a *MongoArchive) Load(ctx context.Context, sessionID string) (*SessionRecord, error) {
	var rec SessionRecord
	err := a.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session '%s': %w", sessionID, err)
	}
	return &rec, nil
}

// List returns archived sessions, most recently updated first.
func (a *MongoArchive) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []SessionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode archived sessions: %w", err)
	}
	return records, nil
}

// Delete removes an archived session. Deleting an absent session is not
// an error.
func (a *MongoArchive) Delete(ctx context.Context, sessionID string) error {
	if _, err := a.collection.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete archived session '%s': %w", sessionID, err)
	}
	return nil
}

var _ Archive = (*MongoArchive)(nil)
