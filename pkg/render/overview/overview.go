// Package overview renders a schematic section map with Graphviz.
//
// Each section id becomes one node pinned at its label anchor, and sections
// whose bounding boxes touch are joined by an edge. The neato engine honours
// the pinned positions, so the overview keeps the venue's shape while
// collapsing each section to a single labelled node. It is useful for
// checking id derivation and adjacency on large diagrams:
//
//	dot, err := overview.ToDOT(d, overview.Options{})
//	svg, err := overview.RenderSVG(ctx, dot)
package overview

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/style"
)

// Options configures the overview.
type Options struct {
	// Detailed adds row and price from Records to node labels.
	Detailed bool
	Records  records.Lookup
	Resolver *style.Resolver
	State    style.Interaction
	// Scale is points per view box unit (default 72 / 100).
	Scale float64
}

// ToDOT converts a diagram to a Graphviz DOT graph with pinned node
// positions. Positions use y up, the Graphviz convention.
func ToDOT(d *diagram.Diagram, opts Options) (string, error) {
	t, err := geom.NewTransformer(d.ViewBox, geom.YAxisUp)
	if err != nil {
		return "", err
	}
	if opts.Scale <= 0 {
		opts.Scale = 0.72
	}
	r := opts.Resolver
	if r == nil {
		r = style.NewResolver(style.DefaultPalette(), d)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [color=\"#999999\"];\n")
	buf.WriteString("\n")

	ids := d.IDs()
	bounds := make(map[string]geom.Rect, len(ids))
	for _, id := range ids {
		at, _ := d.Label(id)
		p := t.ToSurface(at)
		s := r.Resolve(id, opts.State)
		attrs := []string{
			"label=" + quote(fmtLabel(id, opts)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X*opts.Scale), fmtFloat(p.Y*opts.Scale)),
			fmt.Sprintf("fillcolor=%q", s.Fill),
			fmt.Sprintf("color=%q", s.Stroke),
			fmt.Sprintf("penwidth=%s", fmtFloat(s.StrokeWidth/2)),
		}
		if s.EmphasizeLabel {
			attrs = append(attrs, "fontname=\"Helvetica-Bold\"")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(id), strings.Join(attrs, ", "))

		var b geom.Rect
		for i, part := range d.Parts(id) {
			if i == 0 {
				b = part.Geometry.Bounds()
				continue
			}
			b = b.Union(part.Geometry.Bounds())
		}
		bounds[id] = b
	}

	buf.WriteString("\n")
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if touches(bounds[a], bounds[b]) {
				fmt.Fprintf(&buf, "  %s -- %s;\n", quote(a), quote(b))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(id string, opts Options) string {
	if !opts.Detailed {
		return id
	}
	rec, ok := opts.Records.Get(id)
	if !ok {
		return id + "\nno details"
	}
	return fmt.Sprintf("%s\nrow %s\n%s", id, rec.Row, rec.Price)
}

// quote writes a DOT string literal. Unlike %q it leaves non-ASCII text
// alone, which Graphviz reads as UTF-8.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// touches reports whether two boxes overlap or share an edge, within a small
// tolerance for coordinates that were rounded at export.
func touches(a, b geom.Rect) bool {
	const eps = 1e-6
	return a.MinX <= b.MaxX+eps && b.MinX <= a.MaxX+eps &&
		a.MinY <= b.MaxY+eps && b.MinY <= a.MaxY+eps
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out a DOT graph with neato and renders it to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the overview scales like the other sinks.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
