package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Namespaces keep protected operations on independent budgets: exhausting
// login attempts must not consume the registration window and vice versa.
const (
	NamespaceLogin    = "login"
	NamespaceRegister = "register"
)

// AttemptStore counts attempts per key within a fixed window. Implementations
// must increment atomically; lost updates would under-count attackers.
// The in-memory store is only valid for single-instance deployments —
// multi-instance deployments must use the Redis store so all instances share
// one counter.
type AttemptStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, reset time.Time, err error)
}

// Limiter is a fixed-window attempt limiter over an injected store.
type Limiter struct {
	store    AttemptStore
	maxCount int
	window   time.Duration
}

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

func NewLimiter(store AttemptStore, maxCount int, window time.Duration) *Limiter {
	if maxCount <= 0 {
		maxCount = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, maxCount: maxCount, window: window}
}

// Allow consumes one attempt for (namespace, identifier) and reports whether
// it is within budget. It must run before any lookup that could reveal
// whether the identifier exists.
func (l *Limiter) Allow(ctx context.Context, namespace, identifier string) (bool, error) {
	key := fmt.Sprintf("%s:%s", namespace, identifier)
	count, _, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return false, err
	}
	return count <= l.maxCount, nil
}

type memoryEntry struct {
	count int
	reset time.Time
}

// MemoryStore is a mutex-guarded in-process attempt store. Entries roll over
// when their window expires; Sweep drops expired entries so the map does not
// grow without bound.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.reset) {
		entry = &memoryEntry{count: 0, reset: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.reset, nil
}

// Sweep removes entries whose window has passed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.reset) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
