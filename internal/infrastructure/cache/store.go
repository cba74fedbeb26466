package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte-oriented cache keyed by string. Rate-table snapshots are
// serialized JSON, so the store stays agnostic of what it holds.
type Store interface {
	// Get returns the cached bytes for the key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores bytes under the key with a TTL
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// DeleteAll removes every key managed by this store
	DeleteAll(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store with per-entry expiry. It is the
// default backend for single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached bytes for the key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Set stores bytes under the key with a TTL
func (s *MemoryStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{
		data:      data,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// DeleteAll removes every entry
func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

// Close releases resources; a memory store has none
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
