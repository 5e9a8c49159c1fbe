package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/records"
)

const testDiagram = `{
  "metadata": {"viewBox": "0,0,100,100", "background": "hall.png"},
  "sources": {"section": [
    {"geometry": {"type": "Polygon", "coordinates": [[[-1, -1], [0, -1], [0, 0], [-1, 0], [-1, -1]]]},
     "properties": {"id": "12_A", "polylabel": [[-0.5, -0.5]], "fill": "#22aa66"}},
    {"geometry": {"type": "Polygon", "coordinates": [[[0, -1], [1, -1], [1, 0], [0, 0], [0, -1]]]},
     "properties": {"id": "12_B"}},
    {"geometry": {"type": "Point", "coordinates": [0.5, 0.5]},
     "properties": {"id": "7"}}
  ]}
}`

func testDiagramT(t *testing.T) *diagram.Diagram {
	t.Helper()
	d, err := diagram.ParseBytes([]byte(testDiagram))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	return d
}

func TestRenderSVG(t *testing.T) {
	d := testDiagramT(t)

	out, err := RenderSVG(d)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	svg := string(out)

	for _, want := range []string{
		`viewBox="0 0 100 100"`,
		`<image class="background" href="hall.png"`,
		`class="section" data-section="12" fill="#22aa66"`,
		`class="section" data-section="7" fill="#3388ff"`,
		`<circle`,
		`<text class="label" data-section="12"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if n := strings.Count(svg, `<path class="section" data-section="12"`); n != 2 {
		t.Errorf("paths for section 12 = %d, want 2", n)
	}
	if strings.Contains(svg, "<script") {
		t.Error("script should only be emitted with popups")
	}
}

func TestRenderSVGYAxis(t *testing.T) {
	d := testDiagramT(t)

	tests := []struct {
		axis geom.YAxis
		want string
	}{
		{geom.YAxisDown, `d="M0 100 L50 100 L50 50 L0 50 L0 100 Z"`},
		{geom.YAxisUp, `d="M0 0 L50 0 L50 50 L0 50 L0 0 Z"`},
	}
	for _, tt := range tests {
		out, err := RenderSVG(d, WithYAxis(tt.axis))
		if err != nil {
			t.Fatalf("RenderSVG(%s) error: %v", tt.axis, err)
		}
		if !strings.Contains(string(out), tt.want) {
			t.Errorf("RenderSVG(%s) missing %s", tt.axis, tt.want)
		}
	}
}

func TestRenderSVGOptions(t *testing.T) {
	d := testDiagramT(t)
	recs := records.Lookup{"12": {Row: "5", Price: "80", TicketCount: 3}}

	out, err := RenderSVG(d,
		WithSelected("12"),
		WithoutLabels(),
		WithBackground(false, 0),
		WithRecords(recs),
		WithPopups(),
		WithSize(400, 0),
	)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	svg := string(out)

	for _, want := range []string{
		`width="400" height="400"`,
		`class="section selected" data-section="12" fill="#ff0000"`,
		`<g class="popup" data-for="12"`,
		`Row: 5`,
		`<g class="popup" data-for="7"`,
		`Row: Unknown`,
		`"selected":"12"`,
		`"overrides":{"12":{"fill":"#22aa66"}}`,
		`const cfg = `,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	for _, unwanted := range []string{`<image`, `class="label`} {
		if strings.Contains(svg, unwanted) {
			t.Errorf("SVG should not contain %q", unwanted)
		}
	}
}

func TestRenderSVGEscapesIDs(t *testing.T) {
	d, err := diagram.ParseBytes([]byte(`{"metadata": {"viewBox": [0, 0, 10, 10]},
		"sources": {"section": [{"geometry": {"type": "Point", "coordinates": [0, 0]},
		"properties": {"id": "<b>&"}}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderSVG(d, WithPopups())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<b>&") {
		t.Error("section id was not escaped")
	}
}

func TestInvalidYAxis(t *testing.T) {
	d := testDiagramT(t)
	for name, render := range map[string]func(*diagram.Diagram, ...Option) ([]byte, error){
		"svg":     RenderSVG,
		"png":     RenderPNG,
		"geojson": RenderGeoJSON,
		"json":    RenderJSON,
	} {
		_, err := render(d, WithYAxis("sideways"))
		if !errors.IsConfiguration(err) {
			t.Errorf("%s: error = %v, want configuration error", name, err)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	d := testDiagramT(t)

	out, err := RenderPNG(d, WithSize(200, 0))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("size = %dx%d, want 200x200", b.Dx(), b.Dy())
	}

	// 12_A covers the bottom-left quarter with y pointing down.
	r, g, b, _ := img.At(20, 180).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Error("section 12_A should be filled")
	}
	if g <= r {
		t.Errorf("section 12_A should use its green override, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(150, 20).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("empty area should stay white")
	}
}

func TestRenderGeoJSON(t *testing.T) {
	d := testDiagramT(t)

	out, err := RenderGeoJSON(d)
	if err != nil {
		t.Fatalf("RenderGeoJSON() error: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(out, &fc); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("got %s with %d features", fc.Type, len(fc.Features))
	}

	var rings [][][]float64
	if err := json.Unmarshal(fc.Features[0].Geometry.Coordinates, &rings); err != nil {
		t.Fatal(err)
	}
	want := [][][]float64{{{0, 0}, {50, 0}, {50, 50}, {0, 50}, {0, 0}}}
	if diff := cmp.Diff(want, rings); diff != "" {
		t.Errorf("coordinates with y up (-want +got):\n%s", diff)
	}

	props := fc.Features[0].Properties
	if props["section"] != "12" || props["id"] != "12_A" || props["fill"] != "#22aa66" {
		t.Errorf("properties = %v", props)
	}
	if fc.Features[2].Geometry.Type != "Point" {
		t.Errorf("feature 2 type = %s, want Point", fc.Features[2].Geometry.Type)
	}
}

func TestRenderJSON(t *testing.T) {
	d := testDiagramT(t)
	recs := records.Lookup{"12": {Row: "5", Price: "80"}}

	out, err := RenderJSON(d, WithRecords(recs), WithSelected("7"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var got jsonOutput
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if got.Width != 100 || got.Height != 100 || got.YAxis != geom.YAxisDown {
		t.Errorf("header = %v x %v, %s", got.Width, got.Height, got.YAxis)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(got.Sections))
	}

	s12 := got.Sections[0]
	if s12.ID != "12" || len(s12.Parts) != 2 {
		t.Errorf("section 12 = %s with %d parts", s12.ID, len(s12.Parts))
	}
	if s12.Label == nil || *s12.Label != (geom.Point{X: 25, Y: 75}) {
		t.Errorf("label = %v, want {25 75}", s12.Label)
	}
	if s12.Detail == nil || s12.Detail.Row != "5" || s12.Detail.Missing {
		t.Errorf("detail = %+v", s12.Detail)
	}
	if s7 := got.Sections[1]; s7.Style.Class != "section selected" || s7.Detail == nil || !s7.Detail.Missing {
		t.Errorf("section 7 = %+v", s7)
	}
}

func TestBuildLabels(t *testing.T) {
	d := testDiagramT(t)

	l, err := Build(d, WithSelected("12"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Label{
		{ID: "12", At: geom.Point{X: 25, Y: 75}, Emphasized: true},
		{ID: "7", At: geom.Point{X: 75, Y: 25}},
	}
	if diff := cmp.Diff(want, l.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
}
