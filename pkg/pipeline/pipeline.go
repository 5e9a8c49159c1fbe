// Package pipeline provides the load → render pipeline for seatmap.
//
// The CLI, the HTTP server and the terminal viewer all go through this
// package, so caching, record degradation and format handling behave the
// same everywhere.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: fetch and parse the diagram and its section records
//     concurrently. A records failure degrades to an empty mapping; a
//     diagram failure is returned.
//  2. Render: produce artifacts in the requested formats (SVG, PNG,
//     GeoJSON, JSON, DOT, overview SVG), each cached under a key derived
//     from the diagram content and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, fetcher, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Diagram: "hall.json",
//	    Records: "records.yaml",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seatmap/pkg/cache"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatGeoJSON  = "geojson"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatOverview = "overview"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatGeoJSON:  true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatOverview: true,
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatOverview:
		return "overview.svg"
	default:
		return format
	}
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatOverview:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Diagram         string `json:"diagram"`
	Records         string `json:"records,omitempty"`
	MongoDatabase   string `json:"-"`
	MongoCollection string `json:"-"`

	// Render options
	Formats           []string       `json:"formats,omitempty"`
	Width             float64        `json:"width,omitempty"`
	Height            float64        `json:"height,omitempty"`
	YAxis             string         `json:"y_axis,omitempty"` // empty: per-format default
	NoLabels          bool           `json:"no_labels,omitempty"`
	NoBackground      bool           `json:"no_background,omitempty"`
	BackgroundOpacity float64        `json:"background_opacity,omitempty"`
	Selected          string         `json:"selected,omitempty"`
	Popups            bool           `json:"popups,omitempty"`
	Palette           *style.Palette `json:"-"`
	TooltipOffset     tooltip.Offset `json:"-"`

	// Runtime options (not serialized)
	Refresh bool        `json:"-"` // bypass the artifact cache
	Logger  *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Diagram == "" {
		return errors.New(errors.ErrCodeInvalidInput, "diagram source is required")
	}
	if err := errors.ValidateSource(o.Diagram); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults fills in render defaults.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.BackgroundOpacity == 0 {
		o.BackgroundOpacity = 1
	}
	if o.TooltipOffset == (tooltip.Offset{}) {
		o.TooltipOffset = tooltip.DefaultOffset
	}
	if o.Palette == nil {
		p := style.DefaultPalette()
		o.Palette = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and validates render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.YAxis != "" {
		if _, err := geom.ParseYAxis(o.YAxis); err != nil {
			return err
		}
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width and height must be non-negative")
	}
	if o.BackgroundOpacity < 0 || o.BackgroundOpacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "background opacity must be within [0, 1]")
	}
	if o.Selected != "" {
		if err := errors.ValidateSectionID(o.Selected); err != nil {
			return err
		}
	}
	if err := o.Palette.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid palette")
	}
	return nil
}

// OpenOptions returns the records backend options.
func (o *Options) OpenOptions() records.OpenOptions {
	return records.OpenOptions{
		MongoDatabase:   o.MongoDatabase,
		MongoCollection: o.MongoCollection,
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string, d *diagram.Diagram, recordsHash string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		YAxis:       o.YAxis,
		Labels:      !o.NoLabels,
		Selected:    o.Selected,
		RecordsHash: recordsHash,
		PaletteHash: o.Palette.Hash(),
		Interactive: o.Popups,
	}
	if !o.NoBackground && d != nil {
		k.Background = d.Background
		k.BackgroundOpacity = o.BackgroundOpacity
	}
	return k
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Diagram   *diagram.Diagram
	Records   records.Lookup
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sections   int
	Features   int
	Skipped    int
	Records    int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // every artifact came from the cache
}

// String summarises the stats for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("%d sections, %d features, %d records", s.Sections, s.Features, s.Records)
}
