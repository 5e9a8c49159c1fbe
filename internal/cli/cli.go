package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/buildinfo"
	"github.com/matzehuels/seatmap/pkg/cache"
	"github.com/matzehuels/seatmap/pkg/config"
	"github.com/matzehuels/seatmap/pkg/httputil"
	"github.com/matzehuels/seatmap/pkg/observability"
	"github.com/matzehuels/seatmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "seatmap"

	// redisPrefix namespaces artifact keys in a shared Redis.
	redisPrefix = "seatmap:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut     io.Writer
	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		logOut: w,
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() *config.Config { return c.config }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "seatmap",
		Short: "Seatmap renders and serves interactive venue seating charts",
		Long: `Seatmap turns a seating diagram (a GeoJSON feature collection in
normalized coordinates) and a table of section records into rendered charts,
a terminal viewer and a live browser chart with hover tooltips and a detail
panel.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/seatmap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.recordsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment, then installs the log
// hooks and attaches the logger to the command context.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	path := c.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", path)

	observability.NewLogHooks(c.Logger).Install()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	artifacts, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.config.Cache.Backend == config.CacheRedis {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
	}
	r := pipeline.NewRunner(artifacts, keyer, c.newFetcher(), c.Logger)
	r.TTL = c.config.Cache.TTLDuration()
	return r, nil
}

// newCache opens the configured artifact cache. A cache that cannot be
// opened degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.config.Cache
	switch cc.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
			Prefix:   redisPrefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.cacheRoot()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(filepath.Join(dir, "render"))
}

// newFetcher returns an HTTP fetcher backed by the on-disk response cache.
func (c *CLI) newFetcher() *httputil.Fetcher {
	var hc *httputil.Cache
	if dir, err := c.cacheRoot(); err == nil {
		if fc, err := httputil.NewCache(filepath.Join(dir, "http"), cache.TTLRecords); err == nil {
			hc = fc
		} else {
			c.Logger.Debug("http cache disabled", "err", err)
		}
	}
	return httputil.NewFetcher(hc, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/seatmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// cacheRoot returns cache.dir from the config, or cacheDir.
func (c *CLI) cacheRoot() (string, error) {
	if c.config != nil && c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions builds pipeline options for diagram from the configuration.
// An empty diagram falls back to diagram.source.
func (c *CLI) baseOptions(diagram string) pipeline.Options {
	cfg := c.config
	if diagram == "" {
		diagram = cfg.Diagram.Source
	}
	palette := cfg.Palette
	return pipeline.Options{
		Diagram:           diagram,
		Records:           cfg.Records.Source,
		MongoDatabase:     cfg.Records.Database,
		MongoCollection:   cfg.Records.Collection,
		Formats:           cfg.Render.Formats,
		Width:             cfg.Render.Width,
		Height:            cfg.Render.Height,
		YAxis:             cfg.Render.YAxis,
		NoLabels:          !cfg.Render.Labels,
		NoBackground:      !cfg.Render.Background,
		BackgroundOpacity: cfg.Render.BackgroundOpacity,
		Palette:           &palette,
		TooltipOffset:     cfg.Tooltip.Offset(),
		Logger:            c.Logger,
	}
}

// diagramArg returns the first argument, if any.
func diagramArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
