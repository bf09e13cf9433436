package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the in-process KV backend for dev and tests.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates an in-memory store with background expiry sweeps.
func NewMemory() *Memory {
	return &Memory{cache: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Get fetches a value, reporting whether the key exists.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return s, true, nil
}

// Set stores a value with an expiry; ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a key; missing keys are not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}
