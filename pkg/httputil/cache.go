package httputil

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/seatmap/pkg/cache"
)

// ErrExpired is returned by [Cache.Get] together with the stale body when an
// entry exists but has outlived the cache TTL.
var ErrExpired = errors.New("cache entry expired")

// Cache stores fetched response bodies on disk, one JSON file per URL.
// A TTL of 0 means entries never expire.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

type cachedBody struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Body      []byte    `json:"body"`
}

// NewCache creates a Cache rooted at dir, creating the directory if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("httputil: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Get returns the cached body for url.
//
//   - (body, true, nil): fresh hit
//   - (nil, false, nil): miss
//   - (body, false, ErrExpired): stale hit; body is still usable as a fallback
func (c *Cache) Get(url string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(url))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e cachedBody
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(e.FetchedAt) > c.ttl {
		return e.Body, false, ErrExpired
	}
	return e.Body, true, nil
}

// Set stores body for url, resetting its age.
func (c *Cache) Set(url string, body []byte) error {
	data, err := json.Marshal(cachedBody{URL: url, FetchedAt: time.Now(), Body: body})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(url), data, 0o644)
}

// Namespace returns a view of the cache whose keys are prefixed with prefix.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, cache.Hash([]byte(c.prefix+url))+".json")
}
