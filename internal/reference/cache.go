// Package reference caches lookups of genre and rating reference data.
package reference

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLoaderUnavailable is returned when a Cache has nothing to load from.
var ErrLoaderUnavailable = errors.New("reference loader unavailable")

// Loader fetches a single reference entry by identifier.
type Loader[T any] func(ctx context.Context, id int64) (T, error)

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

// Cache wraps a Loader with a TTL-based in-memory cache. Errors are never cached.
type Cache[T any] struct {
	load Loader[T]
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[int64]cacheEntry[T]
}

// NewCache returns a Cache that keeps entries for ttl, one minute when ttl is not positive.
func NewCache[T any](load Loader[T], ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache[T]{
		load:  load,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int64]cacheEntry[T]),
	}
}

// Get returns the cached entry when fresh, otherwise it loads and stores it.
func (c *Cache[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if c == nil || c.load == nil {
		return zero, ErrLoaderUnavailable
	}

	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.value, nil
	}

	value, err := c.load(ctx, id)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry[T]{value: value, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return value, nil
}

// Invalidate drops a single entry.
func (c *Cache[T]) Invalidate(id int64) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}
