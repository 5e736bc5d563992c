package utils

import (
	"sync"
	"time"
)

// TTLMap provides a thread-safe map with expiring entries.
// Expired entries are dropped lazily when they are read or swept.
type TTLMap[K comparable, V any] struct {
	mu      sync.RWMutex
	data    map[K]V
	expires map[K]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLMap creates a new TTLMap with the specified TTL duration.
func NewTTLMap[K comparable, V any](ttl time.Duration) *TTLMap[K, V] {
	return NewTTLMapWithClock[K, V](ttl, time.Now)
}

// NewTTLMapWithClock creates a new TTLMap that reads the time from now.
func NewTTLMapWithClock[K comparable, V any](ttl time.Duration, now func() time.Time) *TTLMap[K, V] {
	return &TTLMap[K, V]{
		data:    make(map[K]V),
		expires: make(map[K]time.Time),
		ttl:     ttl,
		now:     now,
	}
}

// Get retrieves a value from the map.
// Returns the value and whether it exists/is valid.
func (m *TTLMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	value, exists := m.data[key]
	expires := m.expires[key]
	m.mu.RUnlock()

	if !exists {
		var zero V
		return zero, false
	}

	// Check if expired
	if m.now().After(expires) {
		m.mu.Lock()
		if current, ok := m.expires[key]; ok && current.Equal(expires) {
			delete(m.data, key)
			delete(m.expires, key)
		}
		m.mu.Unlock()

		var zero V

		return zero, false
	}

	return value, true
}

// Set adds or updates a value in the map.
func (m *TTLMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	m.expires[key] = m.now().Add(m.ttl)
}

// Touch extends the expiry of an existing key and reports whether it was still live.
func (m *TTLMap[K, V]) Touch(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expires, exists := m.expires[key]
	now := m.now()

	if !exists || now.After(expires) {
		return false
	}

	m.expires[key] = now.Add(m.ttl)

	return true
}

// Delete removes a key from the map.
func (m *TTLMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.expires, key)
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *TTLMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Sweep removes every expired entry and returns how many were removed.
func (m *TTLMap[K, V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0

	for key, expires := range m.expires {
		if now.After(expires) {
			delete(m.data, key)
			delete(m.expires, key)

			removed++
		}
	}

	return removed
}
