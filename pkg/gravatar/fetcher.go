package gravatar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"forumhelper/pkg/circuitbreaker"
	"forumhelper/pkg/metrics"
	"forumhelper/pkg/otel"
)

// Fetcher issues the single outbound lookup and reports the HTTP status.
// A non-nil error means the request never produced a response.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (int, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (int, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (int, error) { return f(ctx, url) }

// HTTPFetcher performs a GET with the client's timeout. Server errors and
// transport failures count against the circuit breaker; a 404 does not.
type HTTPFetcher struct {
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewHTTPFetcher(timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (int, error) {
	var status int
	call := func() error {
		s, err := f.do(ctx, url)
		status = s
		return err
	}
	if f.breaker == nil {
		err := call()
		return status, err
	}

	err := f.breaker.Execute(func() error {
		if err := call(); err != nil {
			return err
		}
		if status >= 500 {
			return errServerStatus
		}
		return nil
	}, func(err error) bool {
		// 调用方自己取消或超时不代表 gravatar 不可用
		return ctx.Err() == nil && !errors.Is(err, context.Canceled)
	})
	if err == errServerStatus {
		return status, nil
	}
	return status, err
}

func (f *HTTPFetcher) do(ctx context.Context, url string) (status int, err error) {
	ctx, span := otel.ClientSpan(ctx, "gravatar.fetch", http.MethodGet, url)
	defer func() { otel.EndClientSpan(span, status, err) }()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.RecordGravatarFetch("error", time.Since(start))
		return 0, err
	}
	defer resp.Body.Close()
	// 读完 body 以复用连接
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	metrics.RecordGravatarFetch(strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp.StatusCode, nil
}
