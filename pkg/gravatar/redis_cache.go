package gravatar

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// negativeMarker 表示“查过但没有头像”；合法 URL 不会以 ! 开头
const negativeMarker = "!404"

// RedisCache shares lookup results between service replicas.
type RedisCache struct {
	rdb         redis.Cmdable
	prefix      string
	ttl         time.Duration
	negativeTTL time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl, negativeTTL time.Duration) *RedisCache {
	return &RedisCache{
		rdb:         rdb,
		prefix:      "gravatar:",
		ttl:         ttl,
		negativeTTL: negativeTTL,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if val == negativeMarker {
		return Entry{}, true, nil
	}
	return Entry{URL: val, Found: true}, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, e Entry) error {
	if !e.Found {
		return c.rdb.Set(ctx, c.prefix+key, negativeMarker, c.negativeTTL).Err()
	}
	return c.rdb.Set(ctx, c.prefix+key, e.URL, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefix+key).Err()
}
