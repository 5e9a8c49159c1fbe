package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command. Flags that
// are not set on the command line leave the configured value in place.
type renderOpts struct {
	output            string
	formats           string
	records           string
	selected          string
	yAxis             string
	width             float64
	height            float64
	backgroundOpacity float64
	noLabels          bool
	noBackground      bool
	popups            bool
	noCache           bool
	refresh           bool
}

// renderCommand creates the render command for generating charts.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [diagram]",
		Short: "Render a seating chart to SVG, PNG, GeoJSON, JSON or DOT",
		Long: `Render a seating diagram, optionally joined with section records.

The diagram argument may be a local file or an http(s) URL; without it,
diagram.source from the config is used. Several formats can be rendered at
once; each is written next to the output base path.`,
		Example: `  seatmap render venue.json
  seatmap render venue.json --records sections.yaml --format svg,png
  seatmap render venue.json --select 12 --no-labels -o chart.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, diagramArg(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, geojson, json, dot, overview (comma-separated)")
	cmd.Flags().StringVarP(&opts.records, "records", "r", "", "section records: file, URL, sqlite:path or mongodb:// URI")
	cmd.Flags().StringVar(&opts.selected, "select", "", "render this section as selected")
	cmd.Flags().StringVar(&opts.yAxis, "y-axis", "", "surface y axis: up or down (default per format)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "surface width (default: view box width)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "surface height (default: view box height)")
	cmd.Flags().Float64Var(&opts.backgroundOpacity, "background-opacity", 1, "background image opacity")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit section labels")
	cmd.Flags().BoolVar(&opts.noBackground, "no-background", false, "omit the background image")
	cmd.Flags().BoolVar(&opts.popups, "popups", true, "embed hover tooltips in SVG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// apply overlays the flags that were set on the command line onto o.
func (r *renderOpts) apply(cmd *cobra.Command, o *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("format") || len(o.Formats) == 0 {
		o.Formats = parseFormats(r.formats)
	}
	if flags.Changed("records") {
		o.Records = r.records
	}
	if flags.Changed("y-axis") {
		o.YAxis = r.yAxis
	}
	if flags.Changed("width") {
		o.Width = r.width
	}
	if flags.Changed("height") {
		o.Height = r.height
	}
	if flags.Changed("background-opacity") {
		o.BackgroundOpacity = r.backgroundOpacity
	}
	if flags.Changed("no-labels") {
		o.NoLabels = r.noLabels
	}
	if flags.Changed("no-background") {
		o.NoBackground = r.noBackground
	}
	o.Selected = r.selected
	o.Popups = r.popups
	o.Refresh = r.refresh
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	po := c.baseOptions(input)
	opts.apply(cmd, &po)
	if po.Diagram == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no diagram: pass one or set diagram.source")
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(po.Diagram)+"...")
	spin.Start()
	result, err := runner.Execute(ctx, po)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(po.Formats, ", ")))

	paths, err := writeArtifacts(result.Artifacts, po.Formats, opts.output, po.Diagram)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", chartName(result.Diagram.Name, po.Diagram))
	printStats(result.Stats.Sections, result.Stats.Records, result.Stats.Skipped, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if po.Records == "" {
		printNewline()
		printNextStep("Add section details", "seatmap render "+po.Diagram+" --records sections.yaml")
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths written.
// A single format goes to output as given; multiple formats share its base.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		path := outputPath(output, input, f, len(formats) == 1)
		if err := writeFile(path, artifacts[f]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath picks the file for one format. A derived path never
// overwrites the input diagram.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	base := basePath(output, input)
	path := base + "." + pipeline.Extension(format)
	if filepath.Clean(path) == filepath.Clean(input) {
		path = base + "-chart." + pipeline.Extension(format)
	}
	return path
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input (or the last URL
// segment). If output has a format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if errors.IsURL(input) {
			input = input[strings.LastIndex(input, "/")+1:]
			if input == "" {
				input = appName
			}
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for f := range pipeline.ValidFormats {
		if ext == "."+f {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

func chartName(name, source string) string {
	if name != "" {
		return name
	}
	return filepath.Base(source)
}
