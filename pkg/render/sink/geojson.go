package sink

import (
	"encoding/json"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
)

type geoJSONCollection struct {
	Type     string           `json:"type"`
	BBox     []float64        `json:"bbox"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// RenderGeoJSON exports the sections as a GeoJSON FeatureCollection in
// surface coordinates. The y axis defaults to up, the GeoJSON convention.
// Each feature keeps its original properties plus the derived id, the
// resolved style and the label position.
func RenderGeoJSON(d *diagram.Diagram, opts ...Option) ([]byte, error) {
	o := newOptions(geom.YAxisUp, opts)
	l, err := buildLayout(d, o)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]geom.Point, len(l.Labels))
	for _, lb := range l.Labels {
		labels[lb.ID] = lb.At
	}

	vb := l.ViewBox
	out := geoJSONCollection{
		Type:     "FeatureCollection",
		BBox:     []float64{vb.MinX, vb.MinY, vb.MinX + vb.Width, vb.MinY + vb.Height},
		Features: make([]geoJSONFeature, 0, len(l.Shapes)),
	}
	for i, s := range l.Shapes {
		props := make(map[string]any, len(d.Sections[i].Properties)+4)
		for k, v := range d.Sections[i].Properties {
			props[k] = v
		}
		props["id"] = s.CompositeID
		props["section"] = s.ID
		props["style"] = s.Style
		if at, ok := labels[s.ID]; ok {
			props["label"] = []float64{at.X, at.Y}
		}
		out.Features = append(out.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   toGeoJSON(s.Geometry),
			Properties: props,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

func toGeoJSON(g geom.Geometry) geoJSONGeometry {
	switch g.Kind {
	case geom.KindPoint:
		return geoJSONGeometry{Type: "Point", Coordinates: position(g.Point)}
	case geom.KindPolygon:
		var rings [][][]float64
		if len(g.Polygons) > 0 {
			rings = polygonCoords(g.Polygons[0])
		}
		return geoJSONGeometry{Type: "Polygon", Coordinates: rings}
	default:
		polys := make([][][][]float64, len(g.Polygons))
		for i, p := range g.Polygons {
			polys[i] = polygonCoords(p)
		}
		return geoJSONGeometry{Type: "MultiPolygon", Coordinates: polys}
	}
}

func polygonCoords(p geom.Polygon) [][][]float64 {
	rings := make([][][]float64, len(p))
	for i, r := range p {
		rings[i] = make([][]float64, len(r))
		for j, q := range r {
			rings[i][j] = position(q)
		}
	}
	return rings
}

func position(p geom.Point) []float64 { return []float64{p.X, p.Y} }
