package kv

import (
	"context"
	"sync"

	"grocery-commerce/internal/domain"
)

type memoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns a process-local backend.
func NewMemory() Repository {
	return &memoryRepo{entries: make(map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *memoryRepo) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	r.mu.Lock()
	r.entries[key] = v
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}
