package session

import (
	"context"
	"sync"
)

// Tier is a flat key-value storage surface. Implementations back the
// ephemeral tier (per-process memory) or the durable tier (file, Redis).
//
// A missing key reads as the empty string with a nil error; a stored empty
// value is indistinguishable from an absent key.
type Tier interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryTier is an in-process Tier. It backs the ephemeral tier and doubles
// as a throwaway durable tier in tests.
type MemoryTier struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTier returns an empty in-process tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{values: map[string]string{}}
}

func (t *MemoryTier) Get(_ context.Context, key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[key], nil
}

func (t *MemoryTier) Set(_ context.Context, key, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, keys ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range keys {
		delete(t.values, key)
	}
	return nil
}

// Len reports the number of stored records. Test helper.
func (t *MemoryTier) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
