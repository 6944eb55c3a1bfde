package catalog

import (
	"context"
	"sync"
	"time"
)

// TTLCache holds one fetched value for ttl. It is safe for concurrent use.
type TTLCache[T any] struct {
	mu        sync.Mutex
	data      T
	fetchedAt time.Time
	valid     bool
	ttl       time.Duration

	// Now is the clock used to age the cached value.
	Now func() time.Time
}

func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{ttl: ttl, Now: time.Now}
}

// Get returns the cached value while it is fresh, otherwise calls fetch and
// caches its result. The bool reports whether the value came from the cache.
// Fetch errors are not cached.
func (c *TTLCache[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.Now().Sub(c.fetchedAt) < c.ttl {
		return c.data, true, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	c.data = v
	c.fetchedAt = c.Now()
	c.valid = true
	return v, false, nil
}

// Invalidate drops the cached value so the next Get fetches.
func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.data = zero
	c.valid = false
}
