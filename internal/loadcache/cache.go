// Package loadcache provides a concurrent get-or-compute cache with an
// at-most-one-computation guarantee per key. It backs the extension and
// include loaders, where the same import is commonly requested from
// many build files parsed in parallel.
package loadcache

import (
	"context"
	"sync"

	"github.com/vk/skyparse/internal/model"
)

// LoadFunc computes the value for a key. It runs at most once per key
// for the lifetime of a cache entry.
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache is a mutex-protected map of single-computation cells. Entries
// are created once and never evicted; callers that need fresh results
// after file-system changes discard the owning parser instance.
//
// A computation that fails with cancellation is purged rather than
// cached, so the next request retries from scratch instead of
// observing a cached partial failure.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
}

type entry[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]*entry[V])}
}

// GetOrLoad returns the cached value for key, computing it with load
// if absent. Concurrent callers for the same key share one
// computation; every caller observes the same result or the same
// failure. Errors returned by load surface unchanged, so typed
// failures keep their kind through this layer.
//
// A waiter whose own context is cancelled stops waiting and reports
// cancellation without disturbing the in-flight computation.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load LoadFunc[K, V]) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{done: make(chan struct{})}
		c.entries[key] = e
		c.mu.Unlock()

		e.val, e.err = load(ctx, key)
		if e.err != nil && model.KindOf(e.err) == model.KindCancelled {
			c.mu.Lock()
			if c.entries[key] == e {
				delete(c.entries, key)
			}
			c.mu.Unlock()
		}
		close(e.done)
		return e.val, e.err
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		return e.val, e.err
	case <-ctx.Done():
		var zero V
		return zero, model.NewCancelled(ctx.Err())
	}
}

// Size returns the number of completed or in-flight entries.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
