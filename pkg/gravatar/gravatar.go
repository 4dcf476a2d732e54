// Package gravatar resolves avatar URLs and remembers which addresses have
// none, so each address costs at most one outbound request per cache
// lifetime.
package gravatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"forumhelper/pkg/metrics"
)

const (
	DefaultBaseURL = "https://www.gravatar.com/avatar"
	DefaultSize    = 100
	DefaultRating  = "g"

	defaultFetchTimeout = 10 * time.Second
)

var (
	// ErrTransport marks lookups that failed for a reason other than a clean
	// "not found" answer. Such failures are never cached.
	ErrTransport = errors.New("gravatar lookup failed")

	errServerStatus = errors.New("gravatar server error")
)

// TransportError wraps a failed lookup.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gravatar lookup %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("gravatar lookup %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Hash returns the cache key and avatar id for an address: the md5 hex of
// strings.ToLower(email). Surrounding whitespace is hashed as given.
func Hash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// BuildURL returns <base>/<hash>?default=404[&rating=r][&size=n].
func BuildURL(baseURL, hash string, size int, rating string) string {
	q := url.Values{}
	q.Set("default", "404")
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	if rating != "" {
		q.Set("rating", strings.ToLower(rating))
	}
	return strings.TrimRight(baseURL, "/") + "/" + hash + "?" + q.Encode()
}

// Resolver looks up avatars through a Fetcher and remembers the answers.
type Resolver struct {
	fetcher Fetcher
	cache   Cache
	baseURL string
	size    int
	rating  string
	logger  *zap.Logger
	// 共享查询的上限，与任何单个调用方的 ctx 无关
	fetchTimeout time.Duration

	group singleflight.Group
}

type Option func(*Resolver)

func WithBaseURL(u string) Option { return func(r *Resolver) { r.baseURL = u } }

func WithDefaults(size int, rating string) Option {
	return func(r *Resolver) {
		r.size = size
		r.rating = rating
	}
}

func WithLogger(l *zap.Logger) Option { return func(r *Resolver) { r.logger = l } }

func WithFetchTimeout(d time.Duration) Option { return func(r *Resolver) { r.fetchTimeout = d } }

// NewResolver builds a resolver. A nil cache gets an unbounded MemoryCache,
// which keeps entries for the resolver's lifetime.
func NewResolver(fetcher Fetcher, cache Cache, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		cache:   cache,
		baseURL: DefaultBaseURL,
		size:    DefaultSize,
		rating:  DefaultRating,
		logger:  zap.NewNop(),

		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewMemoryCache(0, 0, 0)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.fetchTimeout <= 0 {
		r.fetchTimeout = defaultFetchTimeout
	}
	return r
}

// Resolve uses the resolver's default size and rating.
func (r *Resolver) Resolve(ctx context.Context, email string) (string, bool, error) {
	return r.ResolveWith(ctx, email, r.size, r.rating)
}

// ResolveWith returns the avatar URL for email and whether one exists.
// Cached answers, positive or negative, are returned without a request.
// Entries are keyed by address only, so the first size/rating resolved for
// an address is what later callers get back.
func (r *Resolver) ResolveWith(ctx context.Context, email string, size int, rating string) (string, bool, error) {
	key := Hash(email)

	if e, ok := r.lookup(ctx, key); ok {
		if e.Found {
			metrics.IncrementGravatarLookup("hit")
		} else {
			metrics.IncrementGravatarLookup("negative_hit")
		}
		return e.URL, e.Found, nil
	}

	ch := r.group.DoChan(key, func() (any, error) {
		// 共享查询不跟随首个调用方的取消
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()
		// 另一个请求可能刚写完缓存
		if e, ok := r.lookup(fctx, key); ok {
			return e, nil
		}
		return r.fetch(fctx, key, size, rating)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		metrics.IncrementGravatarLookup("error")
		return "", false, &TransportError{URL: BuildURL(r.baseURL, key, size, rating), Err: ctx.Err()}
	}
	if res.Err != nil {
		metrics.IncrementGravatarLookup("error")
		return "", false, res.Err
	}

	e := res.Val.(Entry)
	if e.Found {
		metrics.IncrementGravatarLookup("found")
	} else {
		metrics.IncrementGravatarLookup("not_found")
	}
	return e.URL, e.Found, nil
}

// Invalidate forgets the cached answer for email.
func (r *Resolver) Invalidate(ctx context.Context, email string) error {
	return r.cache.Delete(ctx, Hash(email))
}

func (r *Resolver) lookup(ctx context.Context, key string) (Entry, bool) {
	e, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		// 缓存不可用时退化为直接查询
		r.logger.Warn("gravatar cache read failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	return e, ok
}

func (r *Resolver) fetch(ctx context.Context, key string, size int, rating string) (Entry, error) {
	u := BuildURL(r.baseURL, key, size, rating)

	status, err := r.fetcher.Fetch(ctx, u)
	if err != nil {
		r.logger.Warn("gravatar lookup failed", zap.String("key", key), zap.Error(err))
		return Entry{}, &TransportError{URL: u, Err: err}
	}

	var e Entry
	switch {
	case status == http.StatusNotFound:
		e = Entry{Found: false}
	case status >= 200 && status < 300:
		e = Entry{URL: u, Found: true}
	default:
		r.logger.Warn("gravatar lookup unexpected status", zap.String("key", key), zap.Int("status", status))
		return Entry{}, &TransportError{URL: u, StatusCode: status}
	}

	if err := r.cache.Set(ctx, key, e); err != nil {
		r.logger.Warn("gravatar cache write failed", zap.String("key", key), zap.Error(err))
	}
	return e, nil
}
