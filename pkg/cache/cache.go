// Package cache stores rendered chart artifacts and parsed diagrams between
// runs.
//
// # Backends
//
//   - [FileCache]: JSON entries under ~/.cache/seatmap, used by the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend agrees on them.
// [DefaultKeyer] hashes the content of the diagram together with the render
// options, so editing a diagram file invalidates its artifacts without any
// explicit bookkeeping.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by helpers that turn a miss into an error.
var ErrCacheMiss = errors.New("cache miss")

// Default time-to-live values per entry kind.
const (
	TTLDiagram  = 24 * time.Hour
	TTLRecords  = 10 * time.Minute
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SourceKey identifies a fetched source (diagram or records) by URL or path.
	SourceKey(kind, source string) string
	// ArtifactKey identifies a rendered output of a diagram.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format            string  `json:"format"`
	Width             float64 `json:"width,omitempty"`
	Height            float64 `json:"height,omitempty"`
	YAxis             string  `json:"y_axis,omitempty"`
	Labels            bool    `json:"labels"`
	Background        string  `json:"background,omitempty"`
	BackgroundOpacity float64 `json:"background_opacity,omitempty"`
	Selected          string  `json:"selected,omitempty"`
	RecordsHash       string  `json:"records_hash,omitempty"`
	PaletteHash       string  `json:"palette_hash,omitempty"`
	Interactive       bool    `json:"interactive"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SourceKey returns "source:<kind>:<source>".
func (DefaultKeyer) SourceKey(kind, source string) string {
	return fmt.Sprintf("source:%s:%s", kind, source)
}

// ArtifactKey hashes the diagram hash together with opts.
func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}

// GetOrSet returns the cached value for key, or calls fill and stores its
// result. Backend failures on read are treated as misses; failures on write
// are ignored so that caching never breaks the caller.
func GetOrSet(ctx context.Context, c Cache, key string, ttl time.Duration, fill func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err := fill()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
