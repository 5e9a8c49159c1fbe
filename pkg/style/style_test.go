package style

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seatmap/pkg/diagram"
)

func TestVisualOf(t *testing.T) {
	tests := []struct {
		id   string
		st   Interaction
		want Visual
	}{
		{"12", Interaction{}, Idle},
		{"12", Interaction{HoveredID: "12"}, Hovered},
		{"12", Interaction{SelectedID: "12"}, Selected},
		{"12", Interaction{SelectedID: "12", HoveredID: "12"}, Selected},
		{"12", Interaction{SelectedID: "7", HoveredID: "12"}, Hovered},
		{"", Interaction{}, Idle},
	}
	for _, tt := range tests {
		if got := VisualOf(tt.id, tt.st); got != tt.want {
			t.Errorf("VisualOf(%q, %+v) = %s, want %s", tt.id, tt.st, got, tt.want)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	r := NewResolver(DefaultPalette(), nil)

	both := r.Resolve("12", Interaction{SelectedID: "12", HoveredID: "12"})
	selected := r.Resolve("12", Interaction{SelectedID: "12"})
	if diff := cmp.Diff(selected, both); diff != "" {
		t.Errorf("selected+hovered differs from selected (-sel +both):\n%s", diff)
	}

	if got := r.Resolve("12", Interaction{HoveredID: "12"}); got.Fill != "#ff6b35" || got.FillOpacity != 0.5 {
		t.Errorf("hover style = %+v", got)
	}
	if got := r.Resolve("12", Interaction{}); got.Fill != "#3388ff" || got.StrokeWidth != 2 || got.EmphasizeLabel {
		t.Errorf("idle style = %+v", got)
	}
	if got := selected; got.Fill != "#ff0000" || got.StrokeWidth != 4 || !got.EmphasizeLabel {
		t.Errorf("selected style = %+v", got)
	}
	if !strings.Contains(selected.Class, "selected") {
		t.Errorf("selected class = %q", selected.Class)
	}
}

func TestResolveOverrides(t *testing.T) {
	d, err := diagram.Parse(strings.NewReader(`{
		"metadata": {"viewBox": "0,0,10,10"},
		"sources": {"section": [
			{"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1]]]}, "properties": {"id": "1_a", "fill": "#22aa66", "stroke": "#000"}},
			{"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1]]]}, "properties": {"id": "2", "fill": "not-a-colour"}}
		]}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(DefaultPalette(), d)

	idle := r.Resolve("1", Interaction{})
	if idle.Fill != "#22aa66" || idle.Stroke != "#000" {
		t.Errorf("override idle = %+v", idle)
	}
	if sel := r.Resolve("1", Interaction{SelectedID: "1"}); sel.Fill != "#ff0000" {
		t.Errorf("override leaked into selected: %+v", sel)
	}
	if got := r.Resolve("2", Interaction{}); got.Fill != "#3388ff" {
		t.Errorf("invalid override applied: %+v", got)
	}
}

func TestRestyleAll(t *testing.T) {
	r := NewResolver(DefaultPalette(), nil)
	got := map[string]Visual{}
	r.RestyleAll([]string{"1", "2", "3"}, Interaction{SelectedID: "2", HoveredID: "3"}, func(id string, s Style) {
		switch s.Fill {
		case r.Palette.Selected.Fill:
			got[id] = Selected
		case r.Palette.Hover.Fill:
			got[id] = Hovered
		default:
			got[id] = Idle
		}
	})
	want := map[string]Visual{"1": Idle, "2": Selected, "3": Hovered}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RestyleAll mismatch (-want +got):\n%s", diff)
	}
}

func TestPaletteValidate(t *testing.T) {
	if err := DefaultPalette().Validate(); err != nil {
		t.Errorf("default palette invalid: %v", err)
	}
	p := DefaultPalette()
	p.Hover.Fill = "orange"
	if err := p.Validate(); err == nil {
		t.Error("Validate accepted a named colour")
	}
	p = DefaultPalette()
	p.Selected.FillOpacity = 2
	if err := p.Validate(); err == nil {
		t.Error("Validate accepted opacity 2")
	}
	if DefaultPalette().Hash() == p.Hash() {
		t.Error("different palettes share a hash")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#f00")
	if err != nil {
		t.Fatal(err)
	}
	if c.Hex() != "#ff0000" {
		t.Errorf("ParseColor(#f00) = %s", c.Hex())
	}
	if _, err := ParseColor("#12345"); err == nil {
		t.Error("ParseColor accepted 5 digits")
	}
}
