package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/seatmap/pkg/cache"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
)

type document struct {
	Metadata struct {
		ViewBox    json.RawMessage `json:"viewBox"`
		Name       string          `json:"name"`
		Background string          `json:"background"`
	} `json:"metadata"`
	Sources struct {
		Section json.RawMessage `json:"section"`
	} `json:"sources"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

type featureProps struct {
	ID        any        `json:"id"`
	Polylabel []position `json:"polylabel"`
}

// number accepts a JSON number or a numeric string.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type position []number

func (p position) point() (geom.Point, error) {
	if len(p) < 2 {
		return geom.Point{}, fmt.Errorf("position has %d values, want at least 2", len(p))
	}
	return geom.Point{X: float64(p[0]), Y: float64(p[1])}, nil
}

// Parse reads a diagram document. A missing or malformed viewBox is a
// configuration error; undecodable JSON is a load failure.
func Parse(r io.Reader) (*Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "read diagram")
	}
	return ParseBytes(data)
}

// ParseBytes is [Parse] over an in-memory document.
func ParseBytes(data []byte) (*Diagram, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "decode diagram")
	}

	vb, err := parseViewBox(doc.Metadata.ViewBox)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(doc.Sources.Section)
	if err != nil {
		return nil, err
	}

	d := &Diagram{
		Name:       doc.Metadata.Name,
		ViewBox:    vb,
		Background: doc.Metadata.Background,
		Hash:       cache.Hash(data),
	}
	for i, f := range features {
		s, ok, err := decodeSection(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "feature %d", i)
		}
		if !ok {
			d.Skipped++
			continue
		}
		d.Sections = append(d.Sections, s)
	}
	d.buildIndex()
	return d, nil
}

func parseViewBox(raw json.RawMessage) (geom.ViewBox, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return geom.ViewBox{}, errors.New(errors.ErrCodeConfiguration, "diagram has no metadata.viewBox")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return geom.ParseViewBox(s)
	}
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return geom.ViewBox{}, errors.Wrap(errors.ErrCodeConfiguration, err, "metadata.viewBox")
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return geom.ParseViewBox(strings.Join(parts, ","))
}

// decodeFeatures accepts a FeatureCollection object or a bare feature array.
func decodeFeatures(raw json.RawMessage) ([]feature, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var fs []feature
		if err := json.Unmarshal(raw, &fs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "decode sources.section")
		}
		return fs, nil
	}
	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "decode sources.section")
	}
	return fc.Features, nil
}

func decodeSection(f feature) (Section, bool, error) {
	var s Section
	if len(f.Properties) > 0 && !bytes.Equal(f.Properties, []byte("null")) {
		if err := json.Unmarshal(f.Properties, &s.Properties); err != nil {
			return s, false, fmt.Errorf("properties: %w", err)
		}
		var p featureProps
		if err := json.Unmarshal(f.Properties, &p); err != nil {
			return s, false, fmt.Errorf("properties: %w", err)
		}
		s.CompositeID = idString(p.ID)
		if len(p.Polylabel) > 0 {
			if pt, err := p.Polylabel[0].point(); err == nil {
				s.LabelAnchor = &pt
			}
		}
	}
	s.ID = DeriveID(s.CompositeID)

	if f.Geometry == nil {
		return s, false, nil
	}
	g, ok, err := decodeGeometry(f.Geometry.Type, f.Geometry.Coordinates)
	if err != nil || !ok {
		return s, false, err
	}
	if g.Empty() {
		return s, false, nil
	}
	s.Geometry = g
	return s, true, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func decodeGeometry(kind string, coords json.RawMessage) (geom.Geometry, bool, error) {
	switch geom.Kind(kind) {
	case geom.KindPoint:
		var p position
		if err := json.Unmarshal(coords, &p); err != nil {
			return geom.Geometry{}, false, err
		}
		pt, err := p.point()
		if err != nil {
			return geom.Geometry{}, false, err
		}
		return geom.NewPoint(pt), true, nil

	case geom.KindPolygon:
		var rings [][]position
		if err := json.Unmarshal(coords, &rings); err != nil {
			return geom.Geometry{}, false, err
		}
		poly, err := toPolygon(rings)
		if err != nil {
			return geom.Geometry{}, false, err
		}
		return geom.NewPolygon(poly...), true, nil

	case geom.KindMultiPolygon:
		var polys [][][]position
		if err := json.Unmarshal(coords, &polys); err != nil {
			return geom.Geometry{}, false, err
		}
		out := make([]geom.Polygon, 0, len(polys))
		for _, rings := range polys {
			poly, err := toPolygon(rings)
			if err != nil {
				return geom.Geometry{}, false, err
			}
			out = append(out, poly)
		}
		return geom.NewMultiPolygon(out...), true, nil
	}
	return geom.Geometry{}, false, nil
}

func toPolygon(rings [][]position) (geom.Polygon, error) {
	poly := make(geom.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(geom.Ring, 0, len(ring))
		for _, pos := range ring {
			pt, err := pos.point()
			if err != nil {
				return nil, err
			}
			r = append(r, pt)
		}
		poly = append(poly, r)
	}
	return poly, nil
}
