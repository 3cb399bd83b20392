package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"grocery-commerce/internal/domain"
)

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoRepo struct {
	coll *mongo.Collection
}

// NewMongo stores entries as documents keyed by _id in the given collection.
func NewMongo(db *mongo.Database, collection string) Repository {
	return &mongoRepo{coll: db.Collection(collection)}
}

func (r *mongoRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var entry mongoEntry
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find failed: %w", err)
	}
	return []byte(entry.Value), nil
}

func (r *mongoRepo) Put(ctx context.Context, key string, value []byte) error {
	entry := mongoEntry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, opts); err != nil {
		return fmt.Errorf("mongo replace failed: %w", err)
	}
	return nil
}

func (r *mongoRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete failed: %w", err)
	}
	return nil
}

// Ping checks the connection with a primary read preference.
func (r *mongoRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
