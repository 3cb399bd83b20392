package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"grocery-commerce/internal/notify"
	"grocery-commerce/internal/repository/kv"
	"grocery-commerce/internal/store"
)

const maxPruneInterval = time.Minute

type registryEntry struct {
	sess     *Session
	lastSeen time.Time
}

// Registry keeps one live Session per owner. Sessions idle for longer than
// the idle TTL are dropped; their persisted collections reload on next use.
type Registry struct {
	repo   kv.Repository
	sink   notify.Sink
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	sessions  map[string]*registryEntry
	idleTTL   time.Duration
	lastPrune time.Time
}

func NewRegistry(repo kv.Repository, sink notify.Sink, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Registry{
		repo:     repo,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// SetIdleTTL enables eviction of sessions not fetched within ttl. Zero
// disables eviction.
func (r *Registry) SetIdleTTL(ttl time.Duration) {
	r.mu.Lock()
	r.idleTTL = ttl
	r.mu.Unlock()
}

// Get returns the live session for owner, opening it from the store on first use.
func (r *Registry) Get(ctx context.Context, owner Owner) *Session {
	ns := owner.Namespace()
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(now)
	if e, ok := r.sessions[ns]; ok {
		e.lastSeen = now
		return e.sess
	}
	s := Open(ctx, owner, store.New(r.repo, ns, r.logger), r.sink, r.logger)
	r.sessions[ns] = &registryEntry{sess: s, lastSeen: now}
	return s
}

// Forget drops the live session; the next Get reloads it from the store.
func (r *Registry) Forget(owner Owner) {
	r.mu.Lock()
	delete(r.sessions, owner.Namespace())
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// pruneLocked evicts idle sessions. A session whose lock is held by a request
// is kept.
func (r *Registry) pruneLocked(now time.Time) {
	if r.idleTTL <= 0 {
		return
	}
	interval := min(r.idleTTL, maxPruneInterval)
	if now.Sub(r.lastPrune) < interval {
		return
	}
	r.lastPrune = now
	evicted := 0
	for ns, e := range r.sessions {
		if now.Sub(e.lastSeen) <= r.idleTTL {
			continue
		}
		if !e.sess.mu.TryLock() {
			continue
		}
		e.sess.mu.Unlock()
		delete(r.sessions, ns)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle sessions", zap.Int("count", evicted), zap.Int("live", len(r.sessions)))
	}
}

// Store returns a store scoped to namespace on the registry's backend.
func (r *Registry) Store(namespace string) *store.Store {
	return store.New(r.repo, namespace, r.logger)
}
