package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store for tests and throwaway sessions.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemory returns an empty in-memory store whose entries never expire.
func NewMemory() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.c.Set(key, stored, cache.NoExpiration)
	return nil
}
