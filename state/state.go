// Package state holds the per-run mutable state of the attribute engine:
// the persistent counter store round-tripped through host-persisted state,
// ephemeral counters used by collision-retry loops, and the per-attribute
// uniqueness tracker.
//
// Everything here assumes single-threaded, in-order use by the engine. If
// per-identity assembly is ever parallelized, counters and tracker sets need
// per-attribute mutual exclusion first.
package state

import (
	"context"
	"errors"
)

// Common errors returned by state operations.
var (
	// ErrInvalidName is returned when a counter or tracker name is empty.
	ErrInvalidName = errors.New("state: invalid name")

	// ErrStorageFailed is returned when the backing store fails.
	ErrStorageFailed = errors.New("state: storage operation failed")
)

// Store persists counter state between runs. The default deployment
// round-trips state through the host runtime (MemoryStore); multi-replica
// deployments can share it through Redis (RedisStore).
type Store interface {
	// Load returns the persisted counter map.
	Load(ctx context.Context) (map[string]int, error)

	// Save replaces the persisted counter map.
	Save(ctx context.Context, counters map[string]int) error

	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore is a Store over an in-process map. It backs the default
// deployment, where the host hands the connector its persisted state blob at
// the start of a list operation and receives the updated blob at the end.
type MemoryStore struct {
	counters map[string]int
}

// NewMemoryStore creates a MemoryStore seeded from the given map. A nil
// seed yields an empty store.
func NewMemoryStore(seed map[string]int) *MemoryStore {
	return &MemoryStore{counters: copyCounters(seed)}
}

// Load returns a copy of the stored counter map.
func (s *MemoryStore) Load(_ context.Context) (map[string]int, error) {
	return copyCounters(s.counters), nil
}

// Save replaces the stored counter map with a copy of the given one.
func (s *MemoryStore) Save(_ context.Context, counters map[string]int) error {
	s.counters = copyCounters(counters)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyCounters(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
