// Package config loads seatmap settings.
//
// Settings are layered: [Default] values, then an optional TOML file, then
// SEATMAP_* environment variables. A double underscore separates the
// section from the key:
//
//	SEATMAP_SERVER__ADDR=:9090      -> server.addr
//	SEATMAP_RENDER__Y_AXIS=up       -> render.y_axis
//	SEATMAP_CACHE__BACKEND=redis    -> cache.backend
//
// Command-line flags are applied by the CLI after loading.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SEATMAP_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the top-level seatmap configuration, corresponding to
// config.toml.
type Config struct {
	Diagram DiagramConfig `koanf:"diagram" toml:"diagram"`
	Records RecordsConfig `koanf:"records" toml:"records"`
	Render  RenderConfig  `koanf:"render" toml:"render"`
	Tooltip TooltipConfig `koanf:"tooltip" toml:"tooltip"`
	Palette style.Palette `koanf:"palette" toml:"palette"`
	Server  ServerConfig  `koanf:"server" toml:"server"`
	Cache   CacheConfig   `koanf:"cache" toml:"cache"`
}

// DiagramConfig locates the geometry document.
type DiagramConfig struct {
	Source string `koanf:"source" toml:"source"`
}

// RecordsConfig locates section records. Source is read by every command;
// Store is the writable target of "records import".
type RecordsConfig struct {
	Source     string `koanf:"source" toml:"source"`
	Store      string `koanf:"store" toml:"store"`
	Database   string `koanf:"database" toml:"database"`
	Collection string `koanf:"collection" toml:"collection"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Formats           []string `koanf:"formats" toml:"formats"`
	Width             float64  `koanf:"width" toml:"width"`
	Height            float64  `koanf:"height" toml:"height"`
	YAxis             string   `koanf:"y_axis" toml:"y_axis"` // empty: per-format default
	Labels            bool     `koanf:"labels" toml:"labels"`
	Background        bool     `koanf:"background" toml:"background"`
	BackgroundOpacity float64  `koanf:"background_opacity" toml:"background_opacity"`
}

// TooltipConfig sizes and offsets tooltips.
type TooltipConfig struct {
	Width   float64 `koanf:"width" toml:"width"`
	Height  float64 `koanf:"height" toml:"height"`
	OffsetX float64 `koanf:"offset_x" toml:"offset_x"`
	OffsetY float64 `koanf:"offset_y" toml:"offset_y"`
	Margin  float64 `koanf:"margin" toml:"margin"`
}

// Size returns the tooltip size.
func (t TooltipConfig) Size() tooltip.Size { return tooltip.Size{W: t.Width, H: t.Height} }

// Offset returns the tooltip offset.
func (t TooltipConfig) Offset() tooltip.Offset {
	return tooltip.Offset{DX: t.OffsetX, DY: t.OffsetY, Margin: t.Margin}
}

// ServerConfig configures "seatmap serve".
type ServerConfig struct {
	Addr            string `koanf:"addr" toml:"addr"`
	AllowAllOrigins bool   `koanf:"allow_all_origins" toml:"allow_all_origins"`
	Watch           bool   `koanf:"watch" toml:"watch"`
	Debounce        string `koanf:"debounce" toml:"debounce"`
}

// DebounceDuration parses Debounce. Call Validate first.
func (s ServerConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(s.Debounce)
	return d
}

// CacheConfig selects the render cache.
type CacheConfig struct {
	Backend       string `koanf:"backend" toml:"backend"`
	Dir           string `koanf:"dir" toml:"dir"`
	RedisAddr     string `koanf:"redis_addr" toml:"redis_addr"`
	RedisPassword string `koanf:"redis_password" toml:"redis_password"`
	RedisDB       int    `koanf:"redis_db" toml:"redis_db"`
	TTL           string `koanf:"ttl" toml:"ttl"`
}

// TTLDuration parses TTL. Call Validate first.
func (c CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Default returns the built-in configuration.
func Default() *Config {
	off := tooltip.DefaultOffset
	return &Config{
		Records: RecordsConfig{
			Database:   "seatmap",
			Collection: "section_records",
		},
		Render: RenderConfig{
			Formats:           []string{"svg"},
			Labels:            true,
			Background:        true,
			BackgroundOpacity: 1,
		},
		Tooltip: TooltipConfig{
			Width:   200,
			Height:  100,
			OffsetX: off.DX,
			OffsetY: off.DY,
			Margin:  off.Margin,
		},
		Palette: style.DefaultPalette(),
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			Watch:    true,
			Debounce: "250ms",
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       "168h",
		},
	}
}

// DefaultPath returns the config file location (~/.config/seatmap/config.toml).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "seatmap", "config.toml"), nil
}

// Load reads the TOML file at path, if it exists, over the defaults and then
// applies SEATMAP_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), Parser()); err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "accessing config %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "unmarshalling config")
	}
	return cfg, nil
}

// envKey maps SEATMAP_SERVER__ADDR to server.addr.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshalling config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "creating %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "writing config to %s", path)
	}
	return nil
}

var validBackends = map[string]bool{
	CacheFile:  true,
	CacheRedis: true,
	CacheNone:  true,
}

// Validate checks that the configuration contains usable values. Every
// failure is a configuration error.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeConfiguration, format, args...)
	}

	if c.Render.YAxis != "" {
		if _, err := geom.ParseYAxis(c.Render.YAxis); err != nil {
			return err
		}
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return invalid("render width and height must be non-negative")
	}
	if c.Render.BackgroundOpacity < 0 || c.Render.BackgroundOpacity > 1 {
		return invalid("render.background_opacity must be within [0, 1]")
	}

	if c.Tooltip.Width <= 0 || c.Tooltip.Height <= 0 {
		return invalid("tooltip width and height must be positive")
	}
	if c.Tooltip.Margin < 0 {
		return invalid("tooltip.margin must be non-negative")
	}

	if err := c.Palette.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid palette")
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if d, err := time.ParseDuration(c.Server.Debounce); err != nil || d < 0 {
		return invalid("invalid server.debounce %q", c.Server.Debounce)
	}

	if !validBackends[c.Cache.Backend] {
		return invalid("invalid cache.backend %q: must be one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return invalid("cache.redis_addr is required for the redis backend")
	}
	if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d <= 0 {
		return invalid("invalid cache.ttl %q", c.Cache.TTL)
	}

	for _, src := range []string{c.Diagram.Source, c.Records.Source} {
		if src == "" {
			continue
		}
		if err := errors.ValidateSource(src); err != nil && !isStoreURI(src) {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid source %q", src)
		}
	}
	return nil
}

func isStoreURI(s string) bool {
	return strings.HasPrefix(s, "mongodb://") || strings.HasPrefix(s, "mongodb+srv://") || strings.HasPrefix(s, "sqlite:")
}
