package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring is a closed sequence of vertices. The closing vertex may or may not be
// repeated; both forms are handled.
type Ring []Point

// Polygon is an outer ring followed by zero or more holes.
type Polygon []Ring

// Kind tags the shape held by a [Geometry].
type Kind string

const (
	KindPoint        Kind = "Point"
	KindPolygon      Kind = "Polygon"
	KindMultiPolygon Kind = "MultiPolygon"
)

// Geometry is a Point, Polygon or MultiPolygon. A Polygon is stored as a
// single-element Polygons slice so callers can range over both polygon kinds
// uniformly.
type Geometry struct {
	Kind     Kind
	Point    Point
	Polygons []Polygon
}

// NewPoint returns a point geometry.
func NewPoint(p Point) Geometry { return Geometry{Kind: KindPoint, Point: p} }

// NewPolygon returns a polygon geometry.
func NewPolygon(rings ...Ring) Geometry {
	return Geometry{Kind: KindPolygon, Polygons: []Polygon{rings}}
}

// NewMultiPolygon returns a multi-polygon geometry.
func NewMultiPolygon(polys ...Polygon) Geometry {
	return Geometry{Kind: KindMultiPolygon, Polygons: polys}
}

// Map returns a copy of g with fn applied to every vertex.
func (g Geometry) Map(fn func(Point) Point) Geometry {
	out := Geometry{Kind: g.Kind}
	if g.Kind == KindPoint {
		out.Point = fn(g.Point)
		return out
	}
	out.Polygons = make([]Polygon, len(g.Polygons))
	for i, poly := range g.Polygons {
		np := make(Polygon, len(poly))
		for j, ring := range poly {
			nr := make(Ring, len(ring))
			for k, p := range ring {
				nr[k] = fn(p)
			}
			np[j] = nr
		}
		out.Polygons[i] = np
	}
	return out
}

// Contains reports whether p lies inside g using the even-odd rule, so holes
// are excluded. Points never contain anything.
func (g Geometry) Contains(p Point) bool {
	for _, poly := range g.Polygons {
		inside := false
		for _, ring := range poly {
			if ring.crosses(p) {
				inside = !inside
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// crosses reports whether a ray cast from p to +X crosses the ring an odd
// number of times.
func (r Ring) crosses(p Point) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	in := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// Area returns the signed shoelace area of the ring.
func (r Ring) Area() float64 {
	var sum float64
	for i := range r {
		a, b := r[i], r[(i+1)%len(r)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Bounds returns the bounding box of all vertices.
func (g Geometry) Bounds() Rect {
	r := emptyRect()
	if g.Kind == KindPoint {
		return r.extend(g.Point)
	}
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				r = r.extend(p)
			}
		}
	}
	return r
}

// Centroid returns the area centroid of the largest outer ring, falling back
// to the bounding-box centre for degenerate shapes.
func (g Geometry) Centroid() Point {
	if g.Kind == KindPoint {
		return g.Point
	}
	var best Ring
	var bestArea float64
	for _, poly := range g.Polygons {
		if len(poly) == 0 {
			continue
		}
		if a := math.Abs(poly[0].Area()); a > bestArea {
			best, bestArea = poly[0], a
		}
	}
	if best == nil {
		return g.Bounds().Center()
	}

	var cx, cy, a float64
	for i := range best {
		p, q := best[i], best[(i+1)%len(best)]
		cross := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
		a += cross
	}
	a /= 2
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Empty reports whether g has no vertices.
func (g Geometry) Empty() bool {
	if g.Kind == KindPoint {
		return false
	}
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			if len(ring) > 0 {
				return false
			}
		}
	}
	return true
}

func (r Rect) extend(p Point) Rect {
	return Rect{
		MinX: math.Min(r.MinX, p.X),
		MinY: math.Min(r.MinY, p.Y),
		MaxX: math.Max(r.MaxX, p.X),
		MaxY: math.Max(r.MaxY, p.Y),
	}
}
