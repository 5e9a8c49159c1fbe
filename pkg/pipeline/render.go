package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/render/overview"
	"github.com/matzehuels/seatmap/pkg/render/sink"
	"github.com/matzehuels/seatmap/pkg/style"
)

// Render generates one artifact per requested format. It does not touch the
// cache; see [Runner.RenderWithCacheInfo].
func Render(ctx context.Context, d *diagram.Diagram, recs records.Lookup, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, d, recs, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format.
func RenderFormat(ctx context.Context, d *diagram.Diagram, recs records.Lookup, format string, opts Options) ([]byte, error) {
	resolver := style.NewResolver(*opts.Palette, d)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data, err = sink.RenderSVG(d, sinkOptions(resolver, recs, opts)...)
	case FormatPNG:
		data, err = sink.RenderPNG(d, sinkOptions(resolver, recs, opts)...)
	case FormatGeoJSON:
		data, err = sink.RenderGeoJSON(d, sinkOptions(resolver, recs, opts)...)
	case FormatJSON:
		data, err = sink.RenderJSON(d, sinkOptions(resolver, recs, opts)...)
	case FormatDOT, FormatOverview:
		var dot string
		dot, err = overview.ToDOT(d, overview.Options{
			Detailed: len(recs) > 0,
			Records:  recs,
			Resolver: resolver,
			State:    style.Interaction{SelectedID: opts.Selected},
		})
		if err == nil && format == FormatDOT {
			data = []byte(dot)
		} else if err == nil {
			data, err = overview.RenderSVG(ctx, dot)
		}
	default:
		err = ValidateFormat(format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

func sinkOptions(r *style.Resolver, recs records.Lookup, opts Options) []sink.Option {
	so := []sink.Option{
		sink.WithResolver(r),
		sink.WithRecords(recs),
		sink.WithSize(opts.Width, opts.Height),
		sink.WithBackground(!opts.NoBackground, opts.BackgroundOpacity),
		sink.WithTooltipOffset(opts.TooltipOffset),
	}
	if opts.YAxis != "" {
		so = append(so, sink.WithYAxis(geom.YAxis(opts.YAxis)))
	}
	if opts.NoLabels {
		so = append(so, sink.WithoutLabels())
	}
	if opts.Selected != "" {
		so = append(so, sink.WithSelected(opts.Selected))
	}
	if opts.Popups {
		so = append(so, sink.WithPopups())
	}
	return so
}
