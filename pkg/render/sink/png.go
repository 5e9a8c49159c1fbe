package sink

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
)

// RenderPNG rasterises the diagram with gg. The y axis defaults to down.
// A background image is drawn only when it names a local file; remote
// backgrounds are left to the vector sinks.
func RenderPNG(d *diagram.Diagram, opts ...Option) ([]byte, error) {
	o := newOptions(geom.YAxisDown, opts)
	l, err := buildLayout(d, o)
	if err != nil {
		return nil, err
	}

	w, h := int(l.Width+0.5), int(l.Height+0.5)
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png size %dx%d: must be positive", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	px := newProjector(l)
	if l.Background != "" && !errors.IsURL(l.Background) {
		if err := drawBackground(dc, l, o.bgOpacity); err != nil {
			return nil, err
		}
	}

	for _, s := range l.Shapes {
		if err := drawShape(dc, px, s); err != nil {
			return nil, fmt.Errorf("section %s: %w", s.ID, err)
		}
	}

	dc.SetRGB(0.13, 0.13, 0.13)
	for _, lb := range l.Labels {
		p := px.point(lb.At)
		dc.DrawStringAnchored(lb.ID, p.X, p.Y, 0.5, 0.5)
		if lb.Emphasized {
			dc.DrawStringAnchored(lb.ID, p.X+0.6, p.Y, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// projector maps view box coordinates to image pixels.
type projector struct {
	minX, minY float64
	sx, sy     float64
}

func newProjector(l Layout) projector {
	return projector{
		minX: l.ViewBox.MinX,
		minY: l.ViewBox.MinY,
		sx:   l.Width / l.ViewBox.Width,
		sy:   l.Height / l.ViewBox.Height,
	}
}

func (p projector) point(q geom.Point) geom.Point {
	return geom.Point{X: (q.X - p.minX) * p.sx, Y: (q.Y - p.minY) * p.sy}
}

func drawBackground(dc *gg.Context, l Layout, opacity float64) error {
	if _, err := os.Stat(l.Background); err != nil {
		return nil
	}
	img, err := gg.LoadImage(l.Background)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLoadFailure, err, "background %s", l.Background)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	dc.Push()
	dc.Scale(l.Width/float64(b.Dx()), l.Height/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()

	if opacity < 1 {
		dc.SetRGBA(1, 1, 1, 1-opacity)
		dc.DrawRectangle(0, 0, l.Width, l.Height)
		dc.Fill()
	}
	return nil
}

func drawShape(dc *gg.Context, px projector, s Shape) error {
	fill, err := s.Style.FillColor()
	if err != nil {
		return err
	}
	stroke, err := s.Style.StrokeColor()
	if err != nil {
		return err
	}

	dc.NewSubPath()
	switch s.Geometry.Kind {
	case geom.KindPoint:
		p := px.point(s.Geometry.Point)
		dc.DrawCircle(p.X, p.Y, pointRadius)
	default:
		for _, poly := range s.Geometry.Polygons {
			for _, ring := range poly {
				traceRing(dc, px, ring)
			}
		}
	}

	dc.SetFillRuleEvenOdd()
	setColor(dc, fill, s.Style.FillOpacity)
	dc.FillPreserve()
	setColor(dc, stroke, s.Style.StrokeOpacity)
	dc.SetLineWidth(s.Style.StrokeWidth)
	if s.Style.StrokeWidth > 0 {
		dc.Stroke()
	} else {
		dc.ClearPath()
	}
	return nil
}

func traceRing(dc *gg.Context, px projector, ring geom.Ring) {
	for i, q := range ring {
		p := px.point(q)
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	if len(ring) > 0 {
		dc.ClosePath()
	}
}

func setColor(dc *gg.Context, c colorful.Color, alpha float64) {
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}
