package geom

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/seatmap/pkg/errors"
)

// ViewBox is the rectangle a diagram is mapped onto.
type ViewBox struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseViewBox parses "minX,minY,width,height". Whitespace is accepted as a
// separator as well, matching the SVG attribute syntax.
func ParseViewBox(raw string) (ViewBox, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return ViewBox{}, errors.New(errors.ErrCodeConfiguration,
			"viewBox %q: want 4 numbers, got %d", raw, len(fields))
	}

	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return ViewBox{}, errors.New(errors.ErrCodeConfiguration,
				"viewBox %q: field %d is not a finite number", raw, i+1)
		}
		v[i] = n
	}

	vb := ViewBox{MinX: v[0], MinY: v[1], Width: v[2], Height: v[3]}
	if err := vb.Validate(); err != nil {
		return ViewBox{}, err
	}
	return vb, nil
}

// Validate reports a configuration error for non-positive dimensions.
func (v ViewBox) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return errors.New(errors.ErrCodeConfiguration,
			"viewBox %s: width and height must be positive", v)
	}
	return nil
}

// String formats the view box the way the SVG viewBox attribute expects.
func (v ViewBox) String() string {
	return strings.Join([]string{
		strconv.FormatFloat(v.MinX, 'f', -1, 64),
		strconv.FormatFloat(v.MinY, 'f', -1, 64),
		strconv.FormatFloat(v.Width, 'f', -1, 64),
		strconv.FormatFloat(v.Height, 'f', -1, 64),
	}, " ")
}

// Rect returns the view box as a rectangle.
func (v ViewBox) Rect() Rect {
	return Rect{MinX: v.MinX, MinY: v.MinY, MaxX: v.MinX + v.Width, MaxY: v.MinY + v.Height}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Empty reports whether the rectangle encloses nothing.
func (r Rect) Empty() bool { return r.MaxX < r.MinX || r.MaxY < r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

func emptyRect() Rect {
	return Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}
