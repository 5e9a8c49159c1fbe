// Package tooltip places a tooltip next to the pointer without letting it
// leave the viewport.
//
// Placement runs per axis. The tooltip starts at the cursor plus an offset;
// if that overflows the far edge it flips to the other side of the cursor;
// if the flip overflows the near edge it is clamped to the margin.
//
//	left = x + DX
//	if left + w > vw { left = x - w - Margin }
//	if left < 0      { left = Margin }
//
// The vertical axis is identical with y, h, DY and vh.
package tooltip

// Point is a cursor position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in viewport pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Position is the top-left corner of a placed tooltip.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Offset controls the distance between cursor and tooltip.
type Offset struct {
	DX     float64 `json:"dx" koanf:"offset_x" toml:"offset_x"`
	DY     float64 `json:"dy" koanf:"offset_y" toml:"offset_y"`
	Margin float64 `json:"margin" koanf:"margin" toml:"margin"`
}

// DefaultOffset places the tooltip 10px right of and below the cursor.
var DefaultOffset = Offset{DX: 10, DY: 10, Margin: 10}

// Place returns the tooltip position for a cursor, tooltip size and viewport.
func Place(cursor Point, size Size, viewport Size, off Offset) Position {
	return Position{
		Left: axis(cursor.X, size.W, viewport.W, off.DX, off.Margin),
		Top:  axis(cursor.Y, size.H, viewport.H, off.DY, off.Margin),
	}
}

func axis(c, extent, limit, offset, margin float64) float64 {
	p := c + offset
	if p+extent > limit {
		p = c - extent - margin
	}
	if p < 0 {
		p = margin
	}
	return p
}
