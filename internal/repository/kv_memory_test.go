package repository

import (
	"context"
	"errors"
	"sync"
	"time"
	"usdc-storefront/internal/client"
)

// memoryKV implements client.KVStore with TTL semantics for tests.
type memoryKV struct {
	mu     sync.Mutex
	values map[string]string
	expiry map[string]time.Time
	down   bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{
		values: make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

func (m *memoryKV) expired(key string) bool {
	exp, ok := m.expiry[key]
	return ok && time.Now().After(exp)
}

func (m *memoryKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errors.New("kv down")
	}
	m.values[key] = value
	delete(m.expiry, key)
	if ttl > 0 {
		m.expiry[key] = time.Now().Add(ttl)
	}
	return nil
}

func (m *memoryKV) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errors.New("kv down")
	}
	if _, ok := m.values[key]; ok && !m.expired(key) {
		return false, nil
	}
	m.values[key] = value
	delete(m.expiry, key)
	if ttl > 0 {
		m.expiry[key] = time.Now().Add(ttl)
	}
	return true, nil
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return "", errors.New("kv down")
	}
	val, ok := m.values[key]
	if !ok || m.expired(key) {
		return "", client.ErrKeyNotFound
	}
	return val, nil
}

func (m *memoryKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errors.New("kv down")
	}
	delete(m.values, key)
	delete(m.expiry, key)
	return nil
}
