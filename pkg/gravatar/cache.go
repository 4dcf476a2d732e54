package gravatar

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is a cached lookup result. Found=false is a negative entry: the
// address was looked up and has no avatar.
type Entry struct {
	URL   string
	Found bool
}

// Cache stores lookup results keyed by email hash. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is a bounded in-process LRU. Positive and negative entries
// can expire independently; a zero TTL never expires.
type MemoryCache struct {
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time

	lru *expirable.LRU[string, memoryItem]
}

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemoryCache creates an LRU holding at most capacity entries
// (capacity <= 0 means unbounded).
func NewMemoryCache(capacity int, ttl, negativeTTL time.Duration) *MemoryCache {
	if capacity < 0 {
		capacity = 0
	}
	// 整体 TTL 取两者较长的一个，负缓存的较短期限由条目自身判断
	var sweep time.Duration
	if ttl > 0 && negativeTTL > 0 {
		sweep = max(ttl, negativeTTL)
	}
	return &MemoryCache{
		ttl:         ttl,
		negativeTTL: negativeTTL,
		now:         time.Now,
		lru:         expirable.NewLRU[string, memoryItem](capacity, nil, sweep),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	item, ok := c.lru.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		c.lru.Remove(key)
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, e Entry) error {
	ttl := c.ttl
	if !e.Found {
		ttl = c.negativeTTL
	}
	item := memoryItem{entry: e}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, item)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
