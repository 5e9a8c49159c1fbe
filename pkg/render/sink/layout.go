package sink

import (
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// Option configures a sink. The same options are accepted by every sink;
// options a sink has no use for are ignored.
type Option func(*options)

type options struct {
	axis       geom.YAxis
	width      float64
	height     float64
	resolver   *style.Resolver
	state      style.Interaction
	labels     bool
	background bool
	bgOpacity  float64
	records    records.Lookup
	popups     bool
	offset     tooltip.Offset
}

// WithYAxis overrides the sink's default y-axis direction.
func WithYAxis(a geom.YAxis) Option { return func(o *options) { o.axis = a } }

// WithSize sets the output size in pixels. Either value may be zero, in which
// case it follows the view box aspect ratio.
func WithSize(w, h float64) Option { return func(o *options) { o.width, o.height = w, h } }

// WithResolver sets the style resolver. Without it the default palette is
// used with the diagram's per-section overrides.
func WithResolver(r *style.Resolver) Option { return func(o *options) { o.resolver = r } }

// WithSelected renders id in its selected style.
func WithSelected(id string) Option { return func(o *options) { o.state.SelectedID = id } }

// WithoutLabels omits section labels.
func WithoutLabels() Option { return func(o *options) { o.labels = false } }

// WithBackground controls the background image and its opacity.
func WithBackground(show bool, opacity float64) Option {
	return func(o *options) { o.background, o.bgOpacity = show, opacity }
}

// WithRecords supplies section records for tooltips and detail data.
func WithRecords(recs records.Lookup) Option { return func(o *options) { o.records = recs } }

// WithPopups adds hover popups and the client interaction script (SVG only).
func WithPopups() Option { return func(o *options) { o.popups = true } }

// WithTooltipOffset sets the popup offset used by the client script.
func WithTooltipOffset(off tooltip.Offset) Option { return func(o *options) { o.offset = off } }

func newOptions(axis geom.YAxis, opts []Option) options {
	o := options{
		axis:       axis,
		labels:     true,
		background: true,
		bgOpacity:  1,
		offset:     tooltip.DefaultOffset,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.records == nil {
		o.records = records.Lookup{}
	}
	return o
}

// Layout is a diagram mapped onto a surface. Coordinates are in the view box
// space; Width and Height are the output size.
type Layout struct {
	ViewBox    geom.ViewBox
	YAxis      geom.YAxis
	Width      float64
	Height     float64
	Background string
	Shapes     []Shape
	Labels     []Label
}

// Shape is one section feature on the surface.
type Shape struct {
	ID          string
	CompositeID string
	Geometry    geom.Geometry
	Style       style.Style
}

// Label is the label of one section id.
type Label struct {
	ID         string
	At         geom.Point
	Emphasized bool
}

// Build maps d onto a surface with the given y axis. Shapes keep source
// order; labels are one per distinct id.
func Build(d *diagram.Diagram, opts ...Option) (Layout, error) {
	return buildLayout(d, newOptions(geom.YAxisDown, opts))
}

func buildLayout(d *diagram.Diagram, o options) (Layout, error) {
	t, err := geom.NewTransformer(d.ViewBox, o.axis)
	if err != nil {
		return Layout{}, err
	}
	r := o.resolver
	if r == nil {
		r = style.NewResolver(style.DefaultPalette(), d)
	}

	w, h := outputSize(d.ViewBox, o.width, o.height)
	l := Layout{
		ViewBox: d.ViewBox,
		YAxis:   t.YAxis(),
		Width:   w,
		Height:  h,
		Shapes:  make([]Shape, 0, len(d.Sections)),
	}
	if o.background {
		l.Background = d.Background
	}

	for _, s := range d.Sections {
		l.Shapes = append(l.Shapes, Shape{
			ID:          s.ID,
			CompositeID: s.CompositeID,
			Geometry:    t.Geometry(s.Geometry),
			Style:       r.Resolve(s.ID, o.state),
		})
	}
	if o.labels {
		for _, id := range d.IDs() {
			at, _ := d.Label(id)
			l.Labels = append(l.Labels, Label{
				ID:         id,
				At:         t.ToSurface(at),
				Emphasized: r.Resolve(id, o.state).EmphasizeLabel,
			})
		}
	}
	return l, nil
}

func outputSize(vb geom.ViewBox, w, h float64) (float64, float64) {
	switch {
	case w > 0 && h > 0:
		return w, h
	case w > 0:
		return w, w * vb.Height / vb.Width
	case h > 0:
		return h * vb.Width / vb.Height, h
	default:
		return vb.Width, vb.Height
	}
}
