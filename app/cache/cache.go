// Package cache memoizes expensive computations in a CacheStore, running at
// most one computation per key at a time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"postfeed/app/logger"
	"postfeed/app/repositories"
)

// Loader computes the value for a key on a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Cache is a single-flight keyed cache over a CacheStore.
type Cache[T any] struct {
	store repositories.CacheStore
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// New creates a cache over store. ttl <= 0 keeps entries until invalidated.
func New[T any](store repositories.CacheStore, ttl time.Duration, log *logger.Logger) *Cache[T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Cache[T]{
		store:       store,
		ttl:         ttl,
		log:         log.With("component", "cache"),
		generations: make(map[string]uint64),
	}
}

// GetOrLoad returns the cached value for key, or runs load to build it.
// Concurrent callers for the same key share one in-flight load; a caller
// whose ctx ends while waiting returns ctx.Err() without cancelling the load.
func (c *Cache[T]) GetOrLoad(ctx context.Context, key string, load Loader[T]) (T, error) {
	if v, ok := c.lookup(ctx, key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		// A load that finished just before this one started may have filled the store.
		if v, ok := c.lookup(loadCtx, key); ok {
			return v, nil
		}
		gen := c.generation(key)

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.save(loadCtx, key, gen, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		if res.Shared {
			c.log.Debug("shared in-flight load", "key", key)
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Invalidate drops key. A load already in flight still answers the callers
// that joined it, but its result is not stored.
func (c *Cache[T]) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()

	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	c.log.Info("cache entry invalidated", "key", key)
	return nil
}

func (c *Cache[T]) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

func (c *Cache[T]) lookup(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.log.Warn("dropping undecodable cache entry", "key", key, "error", err)
		_ = c.store.Delete(ctx, key)
		return v, false
	}
	return v, true
}

// save stores v unless key was invalidated after the load started.
func (c *Cache[T]) save(ctx context.Context, key string, gen uint64, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("encode cache entry", "key", key, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		c.log.Info("skipping store of stale load", "key", key)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}
