package gravatar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements only the commands RedisCache issues.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisCache_PositiveAndNegative(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewRedisCache(rdb, time.Hour, time.Minute)

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	_ = c.Set(ctx, "k", Entry{URL: "https://img/k", Found: true})
	_ = c.Set(ctx, "n", Entry{Found: false})

	if e, ok, _ := c.Get(ctx, "k"); !ok || !e.Found || e.URL != "https://img/k" {
		t.Fatalf("positive: %+v %v", e, ok)
	}
	if e, ok, _ := c.Get(ctx, "n"); !ok || e.Found {
		t.Fatalf("negative: %+v %v", e, ok)
	}
	if rdb.ttls["gravatar:k"] != time.Hour || rdb.ttls["gravatar:n"] != time.Minute {
		t.Fatalf("ttls = %v", rdb.ttls)
	}

	_ = c.Delete(ctx, "k")
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("deleted entry still cached")
	}
}

func TestResolver_FallsBackWhenRedisIsDown(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")

	calls := 0
	fetcher := FetcherFunc(func(context.Context, string) (int, error) {
		calls++
		return http.StatusOK, nil
	})
	r := NewResolver(fetcher, NewRedisCache(rdb, time.Hour, time.Minute))

	for i := 0; i < 2; i++ {
		_, found, err := r.Resolve(context.Background(), "user@example.com")
		if err != nil || !found {
			t.Fatalf("resolve %d: found=%v err=%v", i, found, err)
		}
	}
	if calls != 2 {
		t.Fatalf("each lookup should reach the fetcher while the cache is down, calls=%d", calls)
	}
}
