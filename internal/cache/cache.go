package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Store is a byte cache shared by the in-process and redis implementations.
//
// Generations version a family of keys: a reader takes the generation before
// loading from the source of truth and writes under a key built from it, so a
// Bump that happens meanwhile orphans the stale write instead of racing it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Generation(ctx context.Context, name string) (int64, bool)
	Bump(ctx context.Context, name string)
}

// VersionedKey joins a base key with the generation it was read under.
func VersionedKey(base string, gen int64) string {
	return base + ":g" + strconv.FormatInt(gen, 10)
}

type Cache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	m    map[string]entry
	gens map[string]int64
}
type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:  ttl,
		m:    make(map[string]entry),
		gens: make(map[string]int64),
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

// sweepAt bounds the map: keys from older generations are never read again,
// so expired entries are dropped here rather than on Get.
const sweepAt = 64

func (c *Cache) Set(_ context.Context, key string, val []byte) {
	now := time.Now()

	c.mu.Lock()
	if len(c.m) >= sweepAt {
		for k, e := range c.m {
			if now.After(e.exp) {
				delete(c.m, k)
			}
		}
	}
	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Generation(_ context.Context, name string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[name], true
}

// Bump moves name to a new generation. Entries of older generations are
// never read again and expire with their TTL.
func (c *Cache) Bump(_ context.Context, name string) {
	c.mu.Lock()
	c.gens[name]++
	c.mu.Unlock()
}
