// Package store is the durable, JSON-serializing key-value surface that backs
// all session state. Each Store is scoped to one namespace (a session owner),
// writes are synchronous, and reads observe the latest write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/repository/kv"
)

// Keys of the fixed namespace.
const (
	KeyCart           = "cart"
	KeyWishlist       = "wishlist"
	KeyUser           = "user"
	KeyRegisteredUser = "registeredUser"
	KeyAddresses      = "deliveryAddresses"
	KeyPaymentMethods = "paymentMethods"
	KeyUserProfile    = "userProfile"
	KeyOrders         = "orders"
)

// Store is a namespaced view over a kv.Repository.
type Store struct {
	repo      kv.Repository
	namespace string
	logger    *zap.Logger
}

// New scopes repo to namespace. An empty namespace addresses global keys.
func New(repo kv.Repository, namespace string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, namespace: namespace, logger: logger.Named("store")}
}

// Namespace returns the prefix this store writes under.
func (s *Store) Namespace() string {
	return s.namespace
}

// Scope returns a store for another namespace on the same backend.
func (s *Store) Scope(namespace string) *Store {
	return &Store{repo: s.repo, namespace: namespace, logger: s.logger}
}

func (s *Store) fullKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Load decodes the value under key into out. It reports false when the key is
// absent. Malformed data is cleared and reported as absent.
func (s *Store) Load(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.repo.Get(ctx, s.fullKey(key))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("discarding malformed entry",
			zap.String("namespace", s.namespace),
			zap.String("key", key),
			zap.Error(err))
		if delErr := s.repo.Delete(ctx, s.fullKey(key)); delErr != nil {
			s.logger.Warn("clear malformed entry failed", zap.String("key", key), zap.Error(delErr))
		}
		return false, nil
	}
	return true, nil
}

// Has reports whether key is present.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.repo.Get(ctx, s.fullKey(key))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save encodes v under key.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.repo.Put(ctx, s.fullKey(key), raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// LoadList reads a collection. Absent, malformed and unreadable entries all
// yield an empty collection; read errors are logged.
func LoadList[T any](ctx context.Context, s *Store, key string) []T {
	var items []T
	ok, err := s.Load(ctx, key, &items)
	if err != nil {
		s.logger.Warn("load failed, starting empty",
			zap.String("namespace", s.namespace),
			zap.String("key", key),
			zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return items
}

// SaveList persists a collection. Empty collections delete the key so that
// presence of the key keeps meaning "has had items".
func SaveList[T any](ctx context.Context, s *Store, key string, items []T) error {
	if len(items) == 0 {
		return s.Remove(ctx, key)
	}
	return s.Save(ctx, key, items)
}
