package diagram

import (
	"strings"

	"github.com/matzehuels/seatmap/pkg/geom"
)

// UnknownID is the section id used when a feature carries no id.
const UnknownID = "Unknown"

// DeriveID returns the section id for a composite feature id: the text
// before the first underscore. Ids without an underscore, or with nothing
// before it, are returned unchanged; the empty id becomes [UnknownID].
func DeriveID(composite string) string {
	if composite == "" {
		return UnknownID
	}
	if prefix, _, ok := strings.Cut(composite, "_"); ok && prefix != "" {
		return prefix
	}
	return composite
}

// Section is one drawable feature of a diagram.
type Section struct {
	ID          string         // derived id, see DeriveID
	CompositeID string         // properties.id as found in the source
	Geometry    geom.Geometry  // normalized coordinates
	LabelAnchor *geom.Point    // normalized; nil when the feature has no polylabel
	Properties  map[string]any // raw feature properties
}

// Label returns the label anchor, or the geometry centroid when the feature
// has none.
func (s Section) Label() geom.Point {
	if s.LabelAnchor != nil {
		return *s.LabelAnchor
	}
	return s.Geometry.Centroid()
}

// Property returns a string property, or "" when it is missing or not a string.
func (s Section) Property(key string) string {
	v, _ := s.Properties[key].(string)
	return v
}

// Diagram is a parsed seating diagram. It is immutable after parsing.
type Diagram struct {
	Name       string
	ViewBox    geom.ViewBox
	Background string // optional background image reference
	Sections   []Section
	Skipped    int    // features with unsupported or empty geometry
	Hash       string // content hash of the source document

	index map[string][]int
	ids   []string
}

func (d *Diagram) buildIndex() {
	d.index = make(map[string][]int, len(d.Sections))
	d.ids = d.ids[:0]
	for i, s := range d.Sections {
		if _, seen := d.index[s.ID]; !seen {
			d.ids = append(d.ids, s.ID)
		}
		d.index[s.ID] = append(d.index[s.ID], i)
	}
}

// IDs returns the distinct section ids in source order.
func (d *Diagram) IDs() []string {
	return append([]string(nil), d.ids...)
}

// Has reports whether id names a section in the diagram.
func (d *Diagram) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Parts returns every feature carrying id, in source order.
func (d *Diagram) Parts(id string) []Section {
	idx := d.index[id]
	out := make([]Section, len(idx))
	for i, j := range idx {
		out[i] = d.Sections[j]
	}
	return out
}

// Hit returns the id of the topmost section containing the normalized point.
// Later features are drawn over earlier ones, so the search runs backwards.
func (d *Diagram) Hit(p geom.Point) (string, bool) {
	for i := len(d.Sections) - 1; i >= 0; i-- {
		if d.Sections[i].Geometry.Contains(p) {
			return d.Sections[i].ID, true
		}
	}
	return "", false
}

// Bounds returns the normalized bounding box of every section, used to fit
// a view to the drawn content.
func (d *Diagram) Bounds() geom.Rect {
	var r geom.Rect
	for i, s := range d.Sections {
		if i == 0 {
			r = s.Geometry.Bounds()
			continue
		}
		r = r.Union(s.Geometry.Bounds())
	}
	return r
}

// Label returns the label position for id: the anchor of its first part that
// has one, otherwise the centroid of its first part.
func (d *Diagram) Label(id string) (geom.Point, bool) {
	parts := d.Parts(id)
	if len(parts) == 0 {
		return geom.Point{}, false
	}
	for _, p := range parts {
		if p.LabelAnchor != nil {
			return *p.LabelAnchor, true
		}
	}
	return parts[0].Label(), true
}
