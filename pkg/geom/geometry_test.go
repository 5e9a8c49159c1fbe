package geom

import (
	"math"
	"testing"
)

func square(x0, y0, x1, y1 float64) Ring {
	return Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestContains(t *testing.T) {
	donut := NewPolygon(square(-1, -1, 1, 1), square(-0.5, -0.5, 0.5, 0.5))
	multi := NewMultiPolygon(Polygon{square(-1, -1, -0.5, -0.5)}, Polygon{square(0.5, 0.5, 1, 1)})

	tests := []struct {
		name string
		g    Geometry
		p    Point
		want bool
	}{
		{"donut body", donut, Point{-0.75, 0}, true},
		{"donut hole", donut, Point{0, 0}, false},
		{"outside", donut, Point{2, 0}, false},
		{"multi first", multi, Point{-0.75, -0.75}, true},
		{"multi second", multi, Point{0.75, 0.75}, true},
		{"multi gap", multi, Point{0, 0}, false},
		{"point geometry", NewPoint(Point{0, 0}), Point{0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBoundsAndCentroid(t *testing.T) {
	g := NewMultiPolygon(Polygon{square(0, 0, 2, 2)}, Polygon{square(5, 5, 5.5, 5.5)})

	b := g.Bounds()
	if b != (Rect{0, 0, 5.5, 5.5}) {
		t.Errorf("Bounds() = %+v", b)
	}

	c := g.Centroid()
	if math.Abs(c.X-1) > 1e-9 || math.Abs(c.Y-1) > 1e-9 {
		t.Errorf("Centroid() = %v, want largest ring centre {1 1}", c)
	}

	flat := NewPolygon(Ring{{0, 0}, {1, 1}, {2, 2}})
	if got := flat.Centroid(); got != (Point{1, 1}) {
		t.Errorf("degenerate Centroid() = %v, want bounds centre", got)
	}
}

func TestTransformerRect(t *testing.T) {
	tr, _ := NewTransformer(ViewBox{0, 0, 100, 100}, YAxisDown)
	got := tr.Rect(Rect{-1, -1, 0, 0})
	if got != (Rect{0, 50, 50, 100}) {
		t.Errorf("Rect() = %+v", got)
	}
}
