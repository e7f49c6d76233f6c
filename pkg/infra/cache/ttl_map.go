package cache

import (
	"sync"
	"time"
)

// TTLEntry represents an entry in TTLMap
type TTLEntry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTLMap is a thread-safe map with TTL for each entry
type TTLMap[V any] struct {
	data map[string]*TTLEntry[V]
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// NewTTLMap creates a new TTLMap with the specified TTL
func NewTTLMap[V any](ttl time.Duration) *TTLMap[V] {
	return &TTLMap[V]{
		data: make(map[string]*TTLEntry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock swaps the time source, mostly for tests.
func (m *TTLMap[V]) WithClock(now func() time.Time) *TTLMap[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Get retrieves a value from the TTLMap if it hasn't expired
func (m *TTLMap[V]) Get(key string) (V, bool) {
	var zero V

	m.mu.RLock()
	entry, exists := m.data[key]
	if !exists {
		m.mu.RUnlock()
		return zero, false
	}
	now := m.now()
	isExpired := now.After(entry.ExpiresAt)
	value := entry.Value
	m.mu.RUnlock()

	if isExpired {
		m.mu.Lock()
		if current, ok := m.data[key]; ok && m.now().After(current.ExpiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return zero, false
	}

	return value, true
}

// Set adds or updates a value in the TTLMap
func (m *TTLMap[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &TTLEntry[V]{
		Value:     value,
		ExpiresAt: m.now().Add(m.ttl),
	}
}

// Delete removes a key from the TTLMap
func (m *TTLMap[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Clear removes all entries from the TTLMap
func (m *TTLMap[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*TTLEntry[V])
}

func (m *TTLMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
