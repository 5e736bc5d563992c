package utils_test

import (
	"sync"
	"testing"
	"time"

	"github.com/robalyx/repledger/pkg/utils"
	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestTTLMap(t *testing.T) {
	t.Parallel()

	ttl := time.Minute

	t.Run("basic set and get", func(t *testing.T) {
		t.Parallel()

		m := utils.NewTTLMap[string, int](ttl)
		m.Set("test1", 123)

		value, exists := m.Get("test1")
		assert.True(t, exists)
		assert.Equal(t, 123, value)
	})

	t.Run("expiration", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{now: time.Unix(0, 0)}
		m := utils.NewTTLMapWithClock[string, int](ttl, clock.Now)
		m.Set("test2", 456)

		clock.Advance(ttl)
		_, exists := m.Get("test2")
		assert.True(t, exists, "entry is live up to its expiry instant")

		clock.Advance(time.Second)
		_, exists = m.Get("test2")
		assert.False(t, exists)
		assert.Zero(t, m.Len(), "expired entry is dropped on read")
	})

	t.Run("touch extends expiry", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{now: time.Unix(0, 0)}
		m := utils.NewTTLMapWithClock[string, int](ttl, clock.Now)
		m.Set("test3", 1)

		clock.Advance(50 * time.Second)
		assert.True(t, m.Touch("test3"))

		clock.Advance(50 * time.Second)
		_, exists := m.Get("test3")
		assert.True(t, exists)

		clock.Advance(2 * ttl)
		assert.False(t, m.Touch("test3"))
		assert.False(t, m.Touch("missing"))
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		m := utils.NewTTLMap[string, int](ttl)
		m.Set("test4", 789)
		m.Delete("test4")

		_, exists := m.Get("test4")
		assert.False(t, exists)
	})

	t.Run("update existing key", func(t *testing.T) {
		t.Parallel()

		m := utils.NewTTLMap[string, int](ttl)
		m.Set("test5", 111)
		m.Set("test5", 222)

		value, exists := m.Get("test5")
		assert.True(t, exists)
		assert.Equal(t, 222, value)
	})

	t.Run("sweep removes expired entries", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{now: time.Unix(0, 0)}
		m := utils.NewTTLMapWithClock[uint64, string](ttl, clock.Now)
		m.Set(1, "a")
		m.Set(2, "b")

		clock.Advance(30 * time.Second)
		m.Set(3, "c")

		clock.Advance(45 * time.Second)
		assert.Equal(t, 2, m.Sweep())
		assert.Equal(t, 1, m.Len())
	})
}

func TestTTLMapConcurrent(t *testing.T) {
	t.Parallel()

	m := utils.NewTTLMap[string, int](100 * time.Millisecond)

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		for i := range 100 {
			m.Set("key", i)
		}
	}()

	go func() {
		defer wg.Done()

		for range 100 {
			m.Get("key")
			m.Sweep()
		}
	}()

	wg.Wait()
}
