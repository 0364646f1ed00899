package cache

import (
	"sync"
	"time"
)

// TimedCache is a bounded set of values that each expire ttl after insertion.
// When full, the oldest value is evicted.
type TimedCache[T comparable] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	expiry   map[T]time.Time
	order    []T
	now      func() time.Time
}

func NewTimedCache[T comparable](ttl time.Duration, capacity int) *TimedCache[T] {
	return &TimedCache[T]{
		ttl:      ttl,
		capacity: capacity,
		expiry:   make(map[T]time.Time, capacity),
		now:      time.Now,
	}
}

func (c *TimedCache[T]) Insert(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	if _, ok := c.expiry[value]; !ok {
		for len(c.order) >= c.capacity && len(c.order) > 0 {
			delete(c.expiry, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, value)
	}
	c.expiry[value] = c.now().Add(c.ttl)
}

// GetAndRemove consumes value, reporting whether it was present and unexpired.
func (c *TimedCache[T]) GetAndRemove(value T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	if _, ok := c.expiry[value]; !ok {
		var zero T
		return zero, false
	}
	delete(c.expiry, value)
	for i, v := range c.order {
		if v == value {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return value, true
}

func (c *TimedCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired()
	return len(c.order)
}

func (c *TimedCache[T]) evictExpired() {
	now := c.now()
	kept := c.order[:0]
	for _, v := range c.order {
		if now.After(c.expiry[v]) {
			delete(c.expiry, v)
			continue
		}
		kept = append(kept, v)
	}
	c.order = kept
}
