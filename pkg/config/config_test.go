package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Tooltip.Offset() != tooltip.DefaultOffset {
		t.Errorf("Offset() = %+v, want %+v", cfg.Tooltip.Offset(), tooltip.DefaultOffset)
	}
	if got := cfg.Cache.TTLDuration(); got != 168*time.Hour {
		t.Errorf("TTLDuration() = %v", got)
	}
	if got := cfg.Server.DebounceDuration(); got != 250*time.Millisecond {
		t.Errorf("DebounceDuration() = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[diagram]
source = "venue.json"

[render]
width = 800
y_axis = "up"

[palette.hover]
fill = "#00ff00"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Diagram.Source != "venue.json" || cfg.Server.Addr != ":9090" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Render.Width != 800 || cfg.Render.YAxis != "up" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Palette.Hover.Fill != "#00ff00" {
		t.Errorf("palette.hover.fill = %q", cfg.Palette.Hover.Fill)
	}
	if cfg.Palette.Hover.StrokeWidth != Default().Palette.Hover.StrokeWidth {
		t.Error("unset palette keys should keep their defaults")
	}
	if !cfg.Render.Labels {
		t.Error("unset render.labels should keep its default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SEATMAP_SERVER__ADDR", ":7070")
	t.Setenv("SEATMAP_RENDER__Y_AXIS", "up")
	t.Setenv("SEATMAP_RENDER__LABELS", "false")
	t.Setenv("SEATMAP_CACHE__BACKEND", "none")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Render.YAxis != "up" || cfg.Render.Labels {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("cache.backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.IsConfiguration(err) {
		t.Errorf("Load() error = %v, want configuration error", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Default()
	want.Diagram.Source = "https://venue.example/hall.json"
	want.Records.Source = "sqlite:records.db"
	want.Render.Formats = []string{"svg", "png"}
	want.Cache.Backend = CacheRedis

	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"y axis", func(c *Config) { c.Render.YAxis = "sideways" }},
		{"negative width", func(c *Config) { c.Render.Width = -1 }},
		{"background opacity", func(c *Config) { c.Render.BackgroundOpacity = 2 }},
		{"tooltip size", func(c *Config) { c.Tooltip.Width = 0 }},
		{"palette colour", func(c *Config) { c.Palette.Selected.Fill = "red" }},
		{"server addr", func(c *Config) { c.Server.Addr = "" }},
		{"debounce", func(c *Config) { c.Server.Debounce = "soon" }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"cache ttl", func(c *Config) { c.Cache.TTL = "0s" }},
		{"redis addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" }},
		{"source", func(c *Config) { c.Diagram.Source = "bad\x00path" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.IsConfiguration(err) {
				t.Errorf("Validate() = %v, want configuration error", err)
			}
		})
	}
}

func TestValidateAcceptsStoreURIs(t *testing.T) {
	cfg := Default()
	cfg.Records.Source = "mongodb://localhost:27017"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SEATMAP_SERVER__ADDR":               "server.addr",
		"SEATMAP_RENDER__Y_AXIS":             "render.y_axis",
		"SEATMAP_PALETTE__IDLE__FILL":        "palette.idle.fill",
		"SEATMAP_CACHE__REDIS_ADDR":          "cache.redis_addr",
		"SEATMAP_RENDER__BACKGROUND_OPACITY": "render.background_opacity",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
