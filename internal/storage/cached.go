package storage

import (
	"context"
	"sync"
	"time"

	"bookkeeping/internal/cache"
)

type cachedValue struct {
	value string
	ok    bool
}

// Cached is a read-through, write-through cache in front of another KV. The
// token is read on every request; this keeps those reads off the disk.
// Misses are cached too.
type Cached struct {
	kv    KV
	cache *cache.LRU[cachedValue]
	// mu orders fills against writes so a slow miss never caches a value a
	// concurrent write has replaced.
	mu sync.Mutex
}

var _ KV = (*Cached)(nil)

func NewCached(kv KV, size int, ttl time.Duration) *Cached {
	return &Cached{kv: kv, cache: cache.NewLRU[cachedValue](size, ttl)}
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.value, v.ok, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(key); ok {
		return v.value, v.ok, nil
	}
	value, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.cache.Set(key, cachedValue{value: value, ok: ok})
	return value, ok, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, cachedValue{value: value, ok: true})
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Delete(key)
	return c.kv.Delete(ctx, key)
}

func (c *Cached) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
	return c.kv.Clear(ctx)
}

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.kv.Close()
}
