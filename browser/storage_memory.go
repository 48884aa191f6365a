package browser

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStorage is an in-process [Storage] backed by go-cache with expiration
// disabled, matching local-storage semantics.
type MemoryStorage struct{ c *gocache.Cache }

// NewMemoryStorage returns an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{c: gocache.New(gocache.NoExpiration, 0)}
}

// GetItem returns the value stored under key.
func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

// SetItem stores value under key without expiry.
func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.c.Set(key, value, gocache.NoExpiration)
	return nil
}

// RemoveItem deletes key. Missing keys are not an error.
func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStorage) Len() int { return m.c.ItemCount() }
