package sink

import (
	"encoding/json"

	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/style"
)

type jsonOutput struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	ViewBox    string        `json:"view_box"`
	YAxis      geom.YAxis    `json:"y_axis"`
	Background string        `json:"background,omitempty"`
	Palette    style.Palette `json:"palette"`
	Selected   string        `json:"selected,omitempty"`
	Sections   []jsonSection `json:"sections"`
	Skipped    int           `json:"skipped,omitempty"`
}

type jsonSection struct {
	ID     string          `json:"id"`
	Parts  []jsonPart      `json:"parts"`
	Label  *geom.Point     `json:"label,omitempty"`
	Style  style.Style     `json:"style"`
	Detail *detail.Content `json:"detail,omitempty"`
}

type jsonPart struct {
	CompositeID string      `json:"composite_id"`
	Kind        geom.Kind   `json:"kind"`
	Point       *geom.Point `json:"point,omitempty"`
	Paths       [][]float64 `json:"paths,omitempty"`
	Bounds      geom.Rect   `json:"bounds"`
}

// RenderJSON exports the surface layout for external front ends: one entry
// per section id with its parts in surface coordinates, resolved style,
// label position and, when records are supplied, detail content. Paths are
// flattened rings [x0, y0, x1, y1, ...].
func RenderJSON(d *diagram.Diagram, opts ...Option) ([]byte, error) {
	o := newOptions(geom.YAxisDown, opts)
	l, err := buildLayout(d, o)
	if err != nil {
		return nil, err
	}
	r := o.resolver
	if r == nil {
		r = style.NewResolver(style.DefaultPalette(), d)
	}

	out := jsonOutput{
		Width:      l.Width,
		Height:     l.Height,
		ViewBox:    l.ViewBox.String(),
		YAxis:      l.YAxis,
		Background: l.Background,
		Palette:    r.Palette,
		Selected:   o.state.SelectedID,
		Skipped:    d.Skipped,
	}

	labels := make(map[string]geom.Point, len(l.Labels))
	for _, lb := range l.Labels {
		labels[lb.ID] = lb.At
	}

	index := map[string]int{}
	for _, s := range l.Shapes {
		i, ok := index[s.ID]
		if !ok {
			i = len(out.Sections)
			index[s.ID] = i
			sec := jsonSection{ID: s.ID, Style: s.Style}
			if at, ok := labels[s.ID]; ok {
				sec.Label = &at
			}
			if len(o.records) > 0 {
				c := detail.Lookup(s.ID, o.records)
				sec.Detail = &c
			}
			out.Sections = append(out.Sections, sec)
		}
		out.Sections[i].Parts = append(out.Sections[i].Parts, toJSONPart(s))
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONPart(s Shape) jsonPart {
	p := jsonPart{
		CompositeID: s.CompositeID,
		Kind:        s.Geometry.Kind,
		Bounds:      s.Geometry.Bounds(),
	}
	if s.Geometry.Kind == geom.KindPoint {
		pt := s.Geometry.Point
		p.Point = &pt
		return p
	}
	for _, poly := range s.Geometry.Polygons {
		for _, ring := range poly {
			flat := make([]float64, 0, 2*len(ring))
			for _, q := range ring {
				flat = append(flat, q.X, q.Y)
			}
			p.Paths = append(p.Paths, flat)
		}
	}
	return p
}
