package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,geojson,dot", []string{"svg", "geojson", "dot"}},
		{"spaces trimmed", " svg , json ", []string{"svg", "json"}},
		{"empty entries skipped", "svg,,png,", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid png", []string{"png"}, false},
		{"valid geojson", []string{"geojson"}, false},
		{"valid all", []string{"svg", "png", "geojson", "json", "dot", "overview"}, false},
		{"pdf not supported", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "venue.json", "venue"},
		{"derived from nested input", "", "maps/hall.geojson", "maps/hall"},
		{"derived from url", "", "https://example.com/maps/arena.json", "arena"},
		{"url without file", "", "https://example.com/", appName},
		{"output with format extension", "out/chart.svg", "venue.json", "out/chart"},
		{"output with other extension", "chart.v2", "venue.json", "chart.v2"},
		{"output without extension", "chart", "venue.json", "chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		format string
		single bool
		want   string
	}{
		{"single format uses output", "my.svg", "venue.json", "svg", true, "my.svg"},
		{"single format derived", "", "venue.json", "svg", true, "venue.svg"},
		{"multiple formats share base", "out/chart.svg", "venue.json", "png", false, "out/chart.png"},
		{"overview extension", "", "venue.json", "overview", false, "venue.overview.svg"},
		{"never overwrites input", "", "venue.json", "json", true, "venue-chart.json"},
		{"explicit output may match input", "venue.json", "venue.json", "json", true, "venue.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.input, tt.format, tt.single)
			if got != tt.want {
				t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q",
					tt.output, tt.input, tt.format, tt.single, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"svg": []byte("<svg/>"),
		"dot": []byte("graph {}"),
	}

	paths, err := writeArtifacts(artifacts, []string{"svg", "dot"}, filepath.Join(dir, "nested", "hall"), "hall.json")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{
		filepath.Join(dir, "nested", "hall.svg"),
		filepath.Join(dir, "nested", "hall.dot"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	got, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "graph {}" {
		t.Errorf("dot artifact = %q", got)
	}
}

func TestRenderOptsApply(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	cmd := c.renderCommand()
	if err := cmd.ParseFlags([]string{"--format", "svg,png", "--y-axis", "up", "--select", "12", "--popups=false"}); err != nil {
		t.Fatal(err)
	}
	ro := renderOptsFromFlags(t, cmd)

	o := pipeline.Options{Formats: []string{"json"}, Width: 640, NoLabels: true}
	ro.apply(cmd, &o)

	if diff := cmp.Diff([]string{"svg", "png"}, o.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if o.YAxis != "up" {
		t.Errorf("YAxis = %q, want up", o.YAxis)
	}
	if o.Selected != "12" {
		t.Errorf("Selected = %q, want 12", o.Selected)
	}
	if o.Popups {
		t.Error("Popups should be false")
	}
	// Unchanged flags keep the configured values.
	if o.Width != 640 {
		t.Errorf("Width = %v, want 640", o.Width)
	}
	if !o.NoLabels {
		t.Error("NoLabels should stay true")
	}
}

// renderOptsFromFlags reads the parsed flag values back into a renderOpts.
func renderOptsFromFlags(t *testing.T, cmd *cobra.Command) renderOpts {
	t.Helper()
	f := cmd.Flags()
	var ro renderOpts
	var err error
	if ro.formats, err = f.GetString("format"); err != nil {
		t.Fatal(err)
	}
	ro.yAxis, _ = f.GetString("y-axis")
	ro.selected, _ = f.GetString("select")
	ro.popups, _ = f.GetBool("popups")
	ro.refresh, _ = f.GetBool("refresh")
	return ro
}
