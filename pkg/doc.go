// Package pkg provides the core libraries for seatmap, the venue seating
// chart engine.
//
// # Overview
//
// Seatmap turns a seating diagram (GeoJSON features in a normalized
// [-1, 1] square) and a table of section records into charts that react to
// the pointer: sections highlight on hover, show a tooltip next to the
// cursor and open a detail panel when clicked. The pkg directory is
// organized into four areas:
//
//  1. Geometry and data: [geom], [diagram], [records]
//  2. Interaction: [style], [tooltip], [detail], [interaction]
//  3. Rendering: [render/sink], [render/overview], [pipeline]
//  4. Infrastructure: [cache], [httputil], [session], [server], [config],
//     [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	diagram JSON + records (file, URL, SQLite, MongoDB)
//	         ↓
//	    [diagram] package (parse features, derive section ids)
//	         ↓
//	    [style] resolver (selected > hovered > idle)
//	         ↓
//	    [interaction] controller ←→ surface (terminal, browser, static sink)
//	         ↓
//	    SVG/PNG/GeoJSON/JSON/DOT output or a live websocket session
//
// # Core Packages
//
// [geom] - Normalized points, polygons and the [geom.Transformer] that maps
// them into a view box, with a configurable y-axis direction.
//
// [diagram] - Parses the diagram document, keeps supported features and
// groups them by derived section id ("12_A" and "12_B" both belong to "12").
//
// [records] - Ticketing data per section, loaded from JSON or YAML files,
// URLs, SQLite or MongoDB.
//
// [style] - The palette and the resolver that turns interaction state into
// a section style.
//
// [tooltip] - Places a tooltip next to the cursor: flip away from the
// overflowing edge, then clamp into the viewport.
//
// [detail] - Builds the detail panel content and renders it as HTML (with
// a Markdown description) or as terminal text.
//
// [interaction] - The controller state machine. It reacts to pointer
// events and pushes styles, tooltips and detail panels to a surface.
//
// # Infrastructure
//
// [pipeline] - Load, render and cache in one place, shared by the CLI and
// the server.
//
// [server] - HTTP API, chart downloads and live sessions over websockets,
// with file watching for hot reload.
//
// [session] - Registry of the viewers connected to the server.
//
// # Common Workflows
//
// Render a chart with a preselected section:
//
//	d, _ := diagram.ParseBytes(data)
//	svg, _ := sink.RenderSVG(d, sink.WithSelected("12"), sink.WithRecords(recs))
//
// Drive a surface by hand:
//
//	ctrl := interaction.New(surface, interaction.Options{Viewport: vp})
//	ctrl.Reload(d, recs)
//	ctrl.PointerEnter("12", tooltip.Point{X: 40, Y: 30})
//	ctrl.Click("12")
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/interaction/...     # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/geom
// [geom.Transformer]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/geom#Transformer
// [diagram]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/diagram
// [records]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/records
// [style]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/style
// [tooltip]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/tooltip
// [detail]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/detail
// [interaction]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/interaction
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/render/sink
// [render/overview]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/render/overview
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/httputil
// [session]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/seatmap/pkg/buildinfo
package pkg
