// Package memory provides a map-backed KeyValueStore for tests and
// single-process deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/booking-portal/internal/persistence"
)

// Storage is an in-memory persistence.KeyValueStore.
type Storage struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

var _ persistence.KeyValueStore = (*Storage)(nil)

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{entries: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, errClosed
	}
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

// Set stores a copy of value under key.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	s.entries[key] = cloneBytes(value)
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	delete(s.entries, key)
	return nil
}

// Keys lists stored keys in ascending order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Close marks the storage closed; later calls fail.
func (s *Storage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
