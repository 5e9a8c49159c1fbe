// Package style decides how a section looks.
//
// [Resolver.Resolve] is the single source of truth for section appearance:
// every surface (SVG, PNG, terminal, browser) asks it for a [Style] instead of
// remembering what a section looked like before a hover. Precedence is fixed:
//
//	selected > hovered > idle
//
// so a section that is both selected and hovered keeps its selected look.
package style

import (
	"encoding/json"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/seatmap/pkg/cache"
	"github.com/matzehuels/seatmap/pkg/diagram"
)

// Interaction is a snapshot of interaction state: at most one selected and
// one hovered section. Empty strings mean none.
type Interaction struct {
	SelectedID string `json:"selected,omitempty"`
	HoveredID  string `json:"hovered,omitempty"`
}

// Visual is the visual state class of a section.
type Visual int

const (
	Idle Visual = iota
	Hovered
	Selected
)

func (v Visual) String() string {
	switch v {
	case Hovered:
		return "hovered"
	case Selected:
		return "selected"
	default:
		return "idle"
	}
}

// VisualOf classifies id under st.
func VisualOf(id string, st Interaction) Visual {
	switch {
	case id != "" && id == st.SelectedID:
		return Selected
	case id != "" && id == st.HoveredID:
		return Hovered
	default:
		return Idle
	}
}

// Style is the resolved appearance of a section.
type Style struct {
	Fill           string  `json:"fill" koanf:"fill" toml:"fill"`
	FillOpacity    float64 `json:"fill_opacity" koanf:"fill_opacity" toml:"fill_opacity"`
	Stroke         string  `json:"stroke" koanf:"stroke" toml:"stroke"`
	StrokeOpacity  float64 `json:"stroke_opacity" koanf:"stroke_opacity" toml:"stroke_opacity"`
	StrokeWidth    float64 `json:"stroke_width" koanf:"stroke_width" toml:"stroke_width"`
	Class          string  `json:"class" koanf:"-" toml:"-"`
	EmphasizeLabel bool    `json:"emphasize_label" koanf:"-" toml:"-"`
}

// FillColor parses Fill.
func (s Style) FillColor() (colorful.Color, error) { return ParseColor(s.Fill) }

// StrokeColor parses Stroke.
func (s Style) StrokeColor() (colorful.Color, error) { return ParseColor(s.Stroke) }

// ParseColor parses "#rgb" or "#rrggbb".
func ParseColor(hex string) (colorful.Color, error) {
	if len(hex) == 4 && hex[0] == '#' {
		hex = string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	if len(hex) != 7 || hex[0] != '#' {
		return colorful.Color{}, fmt.Errorf("color %q: want #rgb or #rrggbb", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}

// Palette holds the base style for each visual state.
type Palette struct {
	Idle     Style `json:"idle" koanf:"idle" toml:"idle"`
	Hover    Style `json:"hover" koanf:"hover" toml:"hover"`
	Selected Style `json:"selected" koanf:"selected" toml:"selected"`
}

// DefaultPalette is blue at rest, orange under the pointer and red when
// selected.
func DefaultPalette() Palette {
	return Palette{
		Idle:     Style{Fill: "#3388ff", FillOpacity: 0.3, Stroke: "#3388ff", StrokeOpacity: 1, StrokeWidth: 2},
		Hover:    Style{Fill: "#ff6b35", FillOpacity: 0.5, Stroke: "#ff6b35", StrokeOpacity: 1, StrokeWidth: 2},
		Selected: Style{Fill: "#ff0000", FillOpacity: 0.7, Stroke: "#ff0000", StrokeOpacity: 1, StrokeWidth: 4},
	}
}

// Validate checks that every colour parses and widths are non-negative.
func (p Palette) Validate() error {
	for name, s := range map[string]Style{"idle": p.Idle, "hover": p.Hover, "selected": p.Selected} {
		if _, err := s.FillColor(); err != nil {
			return fmt.Errorf("palette.%s.fill: %w", name, err)
		}
		if _, err := s.StrokeColor(); err != nil {
			return fmt.Errorf("palette.%s.stroke: %w", name, err)
		}
		if s.StrokeWidth < 0 {
			return fmt.Errorf("palette.%s.stroke_width: must not be negative", name)
		}
		if s.FillOpacity < 0 || s.FillOpacity > 1 {
			return fmt.Errorf("palette.%s.fill_opacity: must be within [0, 1]", name)
		}
	}
	return nil
}

// Hash identifies the palette in cache keys.
func (p Palette) Hash() string {
	data, _ := json.Marshal(p)
	return cache.Hash(data)[:16]
}

// Override is a per-section colour taken from the feature's fill and stroke
// properties. It changes the idle look only, so hover and selection stay
// recognisable on custom-coloured sections.
type Override struct {
	Fill   string
	Stroke string
}

// OverridesFrom collects overrides from every feature that carries a valid
// fill or stroke property. The first part of a multi-part section wins.
func OverridesFrom(d *diagram.Diagram) map[string]Override {
	out := map[string]Override{}
	for _, s := range d.Sections {
		if _, seen := out[s.ID]; seen {
			continue
		}
		var o Override
		if f := s.Property("fill"); f != "" {
			if _, err := ParseColor(f); err == nil {
				o.Fill = f
			}
		}
		if st := s.Property("stroke"); st != "" {
			if _, err := ParseColor(st); err == nil {
				o.Stroke = st
			}
		}
		if o != (Override{}) {
			out[s.ID] = o
		}
	}
	return out
}

// Resolver maps (section, interaction state) to a style. It holds no
// interaction state of its own.
type Resolver struct {
	Palette   Palette
	Overrides map[string]Override
}

// NewResolver returns a resolver over p with the diagram's overrides. d may
// be nil.
func NewResolver(p Palette, d *diagram.Diagram) *Resolver {
	r := &Resolver{Palette: p}
	if d != nil {
		r.Overrides = OverridesFrom(d)
	}
	return r
}

// Resolve returns the style for id under st. It is total: unknown ids get the
// idle style.
func (r *Resolver) Resolve(id string, st Interaction) Style {
	v := VisualOf(id, st)
	var s Style
	switch v {
	case Selected:
		s = r.Palette.Selected
		s.Class = "section selected"
		s.EmphasizeLabel = true
	case Hovered:
		s = r.Palette.Hover
		s.Class = "section hovered"
		s.EmphasizeLabel = true
	default:
		s = r.Palette.Idle
		s.Class = "section"
		if o, ok := r.Overrides[id]; ok {
			if o.Fill != "" {
				s.Fill = o.Fill
			}
			if o.Stroke != "" {
				s.Stroke = o.Stroke
			}
		}
	}
	return s
}

// RestyleAll applies the resolved style of every id.
func (r *Resolver) RestyleAll(ids []string, st Interaction, apply func(id string, s Style)) {
	for _, id := range ids {
		apply(id, r.Resolve(id, st))
	}
}
