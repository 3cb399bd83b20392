package kv

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"grocery-commerce/internal/domain"
)

func TestMongo_PutGetDelete(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database("grocery_test")
	if err := db.Collection("kv_test").Drop(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	repo := NewMongo(db, "kv_test")

	if err := repo.Put(ctx, "wishlist", []byte(`[{"id":"p2"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := repo.Get(ctx, "wishlist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":"p2"}]` {
		t.Fatalf("unexpected value %s", got)
	}
	if err := repo.Delete(ctx, "wishlist"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "wishlist"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
