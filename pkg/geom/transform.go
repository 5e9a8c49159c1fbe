package geom

import (
	"strings"

	"github.com/matzehuels/seatmap/pkg/errors"
)

// YAxis is the direction the vertical axis of a surface grows in.
type YAxis string

const (
	YAxisUp   YAxis = "up"
	YAxisDown YAxis = "down"
)

// ParseYAxis parses "up" or "down" (case-insensitive).
func ParseYAxis(s string) (YAxis, error) {
	switch YAxis(strings.ToLower(strings.TrimSpace(s))) {
	case YAxisUp:
		return YAxisUp, nil
	case YAxisDown:
		return YAxisDown, nil
	}
	return "", errors.New(errors.ErrCodeConfiguration, "y-axis %q: want %q or %q", s, YAxisUp, YAxisDown)
}

// Transformer maps normalized diagram coordinates onto a surface and back.
// The zero value is not usable; construct one with [NewTransformer].
type Transformer struct {
	vb   ViewBox
	axis YAxis
}

// NewTransformer validates vb and axis and returns a transformer for them.
func NewTransformer(vb ViewBox, axis YAxis) (Transformer, error) {
	if err := vb.Validate(); err != nil {
		return Transformer{}, err
	}
	if axis != YAxisUp && axis != YAxisDown {
		return Transformer{}, errors.New(errors.ErrCodeConfiguration, "y-axis %q: want %q or %q", axis, YAxisUp, YAxisDown)
	}
	return Transformer{vb: vb, axis: axis}, nil
}

// ViewBox returns the surface rectangle.
func (t Transformer) ViewBox() ViewBox { return t.vb }

// YAxis returns the surface's vertical direction.
func (t Transformer) YAxis() YAxis { return t.axis }

// ToSurface maps a normalized point onto the surface.
func (t Transformer) ToSurface(p Point) Point {
	out := Point{X: t.vb.MinX + (p.X+1)*t.vb.Width/2}
	if t.axis == YAxisDown {
		out.Y = t.vb.MinY + (1-p.Y)*t.vb.Height/2
	} else {
		out.Y = t.vb.MinY + (p.Y+1)*t.vb.Height/2
	}
	return out
}

// ToNormalized maps a surface point back into the normalized frame.
func (t Transformer) ToNormalized(p Point) Point {
	out := Point{X: 2*(p.X-t.vb.MinX)/t.vb.Width - 1}
	ny := 2 * (p.Y - t.vb.MinY) / t.vb.Height
	if t.axis == YAxisDown {
		out.Y = 1 - ny
	} else {
		out.Y = ny - 1
	}
	return out
}

// Geometry maps every vertex of g onto the surface.
func (t Transformer) Geometry(g Geometry) Geometry {
	return g.Map(t.ToSurface)
}

// Rect maps a normalized rectangle onto the surface. The result is normalized
// so MinY <= MaxY regardless of axis direction.
func (t Transformer) Rect(r Rect) Rect {
	a := t.ToSurface(Point{X: r.MinX, Y: r.MinY})
	b := t.ToSurface(Point{X: r.MaxX, Y: r.MaxY})
	return emptyRect().extend(a).extend(b)
}
