package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	serrors "github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/observability"
)

// MaxBodySize caps a fetched body. Venue geometry files run to a few MB.
const MaxBodySize = 64 << 20

// Fetcher downloads sources over HTTP.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // optional
	Attempts int
	Delay    time.Duration
	Logger   *log.Logger
}

// NewFetcher returns a fetcher with a 30s client timeout and 3 attempts.
func NewFetcher(c *Cache, logger *log.Logger) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    c,
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Logger:   logger,
	}
}

// Fetch GETs url. Network errors, 429 and 5xx responses are retried. With a
// cache attached, fresh entries skip the network and stale entries are used
// when every attempt fails.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var stale []byte
	if f.Cache != nil {
		body, fresh, err := f.Cache.Get(url)
		if fresh {
			return body, nil
		}
		if errors.Is(err, ErrExpired) {
			stale = body
		}
	}

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		if stale != nil {
			f.logger().Warn("fetch failed, using stale copy", "url", url, "err", err)
			return stale, nil
		}
		return nil, serrors.Wrap(serrors.ErrCodeLoadFailure, err, "fetch %s", url)
	}

	if f.Cache != nil {
		if err := f.Cache.Set(url, body); err != nil {
			f.logger().Debug("cache write failed", "url", url, "err", err)
		}
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("GET %s: %s", url, resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxBodySize)
	}
	return body, nil
}

func (f *Fetcher) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

// ReadSource reads a local path or fetches an http(s) URL. A nil fetcher
// uses a default one without a cache.
func ReadSource(ctx context.Context, f *Fetcher, src string) ([]byte, error) {
	if err := serrors.ValidateSource(src); err != nil {
		return nil, err
	}
	if serrors.IsURL(src) {
		if f == nil {
			f = NewFetcher(nil, nil)
		}
		return f.Fetch(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeLoadFailure, err, "read %s", src)
	}
	return data, nil
}
