package kv

import "context"

// Repository is a byte-level key-value backend. Get returns domain.ErrNotFound
// for absent keys; Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
