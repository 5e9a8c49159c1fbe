// Package sink provides output format renderers for seating diagrams.
//
// # Overview
//
// A "sink" maps a [diagram.Diagram] onto a surface with a
// [geom.Transformer] and writes the result in a final format:
//
//   - SVG: vector output with labels, optional popups and a client script
//   - PNG: raster output drawn with fogleman/gg
//   - GeoJSON: sections as a FeatureCollection in surface coordinates
//   - JSON: the surface layout for external front ends
//
// Every sink asks [style.Resolver] for section appearance, so a static
// export with [WithSelected] looks exactly like the live surfaces do.
//
// # Y Axis
//
// Each sink has its own default direction. SVG, PNG and JSON target
// row-major surfaces and default to [geom.YAxisDown]; GeoJSON defaults to
// [geom.YAxisUp]. [WithYAxis] overrides the default.
//
// # SVG Output
//
// [RenderSVG] produces:
//
//   - an optional background image stretched over the view box
//   - one path per feature, carrying data-section and its resolved style
//   - one label per section id
//   - with [WithPopups]: hover popups and a script that applies the same
//     precedence and flip-then-clamp placement as the Go controller
//
// Basic usage:
//
//	svg, err := sink.RenderSVG(d,
//	    sink.WithRecords(recs),
//	    sink.WithPopups(),
//	)
//
// [diagram.Diagram]: github.com/matzehuels/seatmap/pkg/diagram.Diagram
// [geom.Transformer]: github.com/matzehuels/seatmap/pkg/geom.Transformer
// [geom.YAxisDown]: github.com/matzehuels/seatmap/pkg/geom.YAxisDown
// [geom.YAxisUp]: github.com/matzehuels/seatmap/pkg/geom.YAxisUp
// [style.Resolver]: github.com/matzehuels/seatmap/pkg/style.Resolver
package sink
