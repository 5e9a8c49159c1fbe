package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/seatmap/pkg/cache"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/httputil"
	"github.com/matzehuels/seatmap/pkg/observability"
	"github.com/matzehuels/seatmap/pkg/records"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the viewer all use it so that caching logic lives
// in one place.
//
// The Runner is stateless except for the cache, fetcher and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *httputil.Fetcher
	Logger  *log.Logger
	TTL     time.Duration // artifact lifetime; 0 means cache.TTLArtifact
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If fetcher is nil, remote sources are fetched without an HTTP cache.
func NewRunner(c cache.Cache, keyer cache.Keyer, fetcher *httputil.Fetcher, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if fetcher == nil {
		fetcher = httputil.NewFetcher(nil, logger)
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute runs the complete load → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, recs, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Records = recs
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Sections = len(d.IDs())
	result.Stats.Features = len(d.Sections)
	result.Stats.Skipped = d.Skipped
	result.Stats.Records = len(recs)

	r.Logger.Info("loaded diagram",
		"sections", result.Stats.Sections,
		"features", result.Stats.Features,
		"records", result.Stats.Records,
		"duration", result.Stats.LoadTime)
	if d.Skipped > 0 {
		r.Logger.Warn("skipped features with unsupported geometry", "count", d.Skipped)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, recs, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the diagram and its records concurrently. A diagram failure
// is returned; a records failure degrades to an empty mapping.
func (r *Runner) Load(ctx context.Context, opts Options) (*diagram.Diagram, records.Lookup, error) {
	var (
		d    *diagram.Diagram
		recs = records.Lookup{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		observability.Load().OnLoadStart(gctx, "diagram", opts.Diagram)
		var err error
		d, err = diagram.Load(gctx, opts.Diagram, r.Fetcher)
		count := 0
		if d != nil {
			count = len(d.Sections)
		}
		observability.Load().OnLoadComplete(gctx, "diagram", opts.Diagram, count, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("load diagram: %w", err)
		}
		return nil
	})
	if opts.Records != "" {
		g.Go(func() error {
			recs = r.loadRecords(gctx, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return d, recs, nil
}

func (r *Runner) loadRecords(ctx context.Context, opts Options) records.Lookup {
	start := time.Now()
	observability.Load().OnLoadStart(ctx, "records", opts.Records)

	oo := opts.OpenOptions()
	oo.Fetcher = r.Fetcher
	store, err := records.Open(ctx, opts.Records, oo)
	if err != nil {
		r.Logger.Warn("section records unavailable, continuing without details", "source", opts.Records, "err", err)
		observability.Load().OnLoadFailed(ctx, "records", err)
		return records.Lookup{}
	}
	defer store.Close()

	recs := records.LoadOrEmpty(ctx, store, r.Logger)
	observability.Load().OnLoadComplete(ctx, "records", opts.Records, len(recs), time.Since(start), nil)
	return recs
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *diagram.Diagram, recs records.Lookup, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, opts.Formats)

	recordsHash := ""
	if len(recs) > 0 {
		data, err := json.Marshal(recs)
		if err != nil {
			return nil, false, fmt.Errorf("serialize records for cache key: %w", err)
		}
		recordsHash = cache.Hash(data)
	}

	allCached := true
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		fill := func() ([]byte, error) { return RenderFormat(ctx, d, recs, format, opts) }

		if opts.Refresh {
			data, err := fill()
			if err != nil {
				observability.Render().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
				return nil, false, err
			}
			artifacts[format] = data
			allCached = false
			continue
		}

		key := r.Keyer.ArtifactKey(d.Hash, opts.ArtifactKeyOpts(format, d, recordsHash))
		data, hit, err := cache.GetOrSet(ctx, r.Cache, key, r.ttl(), fill)
		if err != nil {
			observability.Render().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			allCached = false
		}
		artifacts[format] = data
	}

	observability.Render().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, d *diagram.Diagram, recs records.Lookup, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, recs, opts)
	return artifacts, err
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLArtifact
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
