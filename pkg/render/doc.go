// Package render groups the chart renderers.
//
// # Overview
//
// Rendering turns a parsed [diagram.Diagram] plus section records into a
// final artifact. Two families exist:
//
//   - Chart sinks (in [sink]): the seating chart itself as SVG, PNG,
//     GeoJSON or a JSON layout, styled by [style.Resolver]
//   - Overview graphs (in [overview]): a Graphviz graph with one node per
//     section, pinned at its label anchor, as DOT, SVG or PNG
//
// # Chart Sinks
//
// Every sink builds the same surface layout first and then writes it out,
// so the formats agree on positions, styles and labels:
//
//	svg, err := sink.RenderSVG(d, sink.WithRecords(recs), sink.WithPopups())
//	png, err := sink.RenderPNG(d, sink.WithSize(1200, 800))
//
// # Overview
//
// The overview shows a diagram's section ids and records at a glance:
//
//	dot, err := overview.ToDOT(d, overview.Options{Detailed: true})
//	svg, err := overview.RenderSVG(ctx, dot)
//
// [sink]: github.com/matzehuels/seatmap/pkg/render/sink
// [overview]: github.com/matzehuels/seatmap/pkg/render/overview
// [diagram.Diagram]: github.com/matzehuels/seatmap/pkg/diagram
// [style.Resolver]: github.com/matzehuels/seatmap/pkg/style
package render
