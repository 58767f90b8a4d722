// Package session keeps per-session conversation state for the research
// agent: a bounded in-memory history window, rolling summary files on disk,
// and pluggable key-value stores for cross-process state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// StoreOption configures a single Store call.
type StoreOption func(*StoreOptions)

// StoreOptions carries per-call storage settings.
type StoreOptions struct {
	TTL time.Duration
}

// WithTTL sets a time-to-live for the stored value.
func WithTTL(ttl time.Duration) StoreOption {
	return func(options *StoreOptions) {
		options.TTL = ttl
	}
}

// Store is the key-value backend for cross-process session state.
type Store interface {
	// Store saves a value under key; WithTTL bounds its lifetime.
	Store(key string, value any, opts ...StoreOption) error

	// Retrieve gets a value by its key.
	Retrieve(key string) (any, error)

	// List returns all keys in the store.
	List() ([]string, error)

	// Clear removes all values from the store.
	Clear() error

	// CleanExpired removes expired entries and reports how many.
	CleanExpired(ctx context.Context) (int64, error)

	// Close releases resources used by the store.
	Close() error
}

type memoryEntry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// InMemoryStore is a process-local Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	order   []string
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry)}
}

// Store implements Store.
func (m *InMemoryStore) Store(key string, value any, opts ...StoreOption) error {
	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	entry := memoryEntry{value: value}
	if options.TTL > 0 {
		entry.expiresAt = time.Now().Add(options.TTL)
	}
	m.entries[key] = entry
	return nil
}

// Retrieve implements Store.
func (m *InMemoryStore) Retrieve(key string) (any, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "key not found"),
			errors.Fields{"key": key},
		)
	}
	return entry.value, nil
}

// List implements Store; keys come back in insertion order, skipping
// expired entries.
func (m *InMemoryStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	keys := make([]string, 0, len(m.order))
	for _, key := range m.order {
		entry, ok := m.entries[key]
		if !ok {
			continue
		}
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Clear implements Store.
func (m *InMemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	m.order = nil
	return nil
}

// CleanExpired implements Store.
func (m *InMemoryStore) CleanExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var removed int64
	kept := m.order[:0]
	for _, key := range m.order {
		entry := m.entries[key]
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	m.order = kept
	return removed, nil
}

// Close implements Store.
func (m *InMemoryStore) Close() error { return nil }
