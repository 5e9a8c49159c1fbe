package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/records"
)

// inspectCommand prints what a diagram contains.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		recordsSrc string
		asJSON     bool
		section    string
	)

	cmd := &cobra.Command{
		Use:   "inspect [diagram]",
		Short: "List the sections of a diagram",
		Long: `List every section of a diagram with its derived id, the number of
features that make it up, its label anchor and its record, if any.

With --section, print the detail panel for one section instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.baseOptions(diagramArg(args))
			if cmd.Flags().Changed("records") {
				opts.Records = recordsSrc
			}
			if opts.Diagram == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no diagram: pass one or set diagram.source")
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			d, recs, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}

			if section != "" {
				if !d.Has(section) {
					return errors.New(errors.ErrCodeNotFound, "section %q not found", section)
				}
				panel, err := detail.TextRenderer{Width: 48}.Render(detail.Lookup(section, recs))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, panel)
				return nil
			}
			if asJSON {
				return printInspectJSON(d, recs)
			}
			printInspect(d, recs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recordsSrc, "records", "r", "", "section records: file, URL, sqlite:path or mongodb:// URI")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&section, "section", "", "print the detail panel for one section")

	return cmd
}

func printInspect(d *diagram.Diagram, recs records.Lookup) {
	name := d.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintln(out, StyleTitle.Render(name))
	printKeyValue("View box", d.ViewBox.String())
	if d.Background != "" {
		printKeyValue("Background", d.Background)
	}
	printKeyValue("Sections", strconv.Itoa(len(d.IDs())))
	printKeyValue("Features", strconv.Itoa(len(d.Sections)))
	printKeyValue("Records", strconv.Itoa(len(recs)))
	if d.Skipped > 0 {
		printWarning("%d features skipped (unsupported geometry)", d.Skipped)
	}
	printNewline()
	fmt.Fprintln(out, sectionTable(d, recs))

	var orphans []string
	for _, id := range recs.IDs() {
		if !d.Has(id) {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		printNewline()
		printWarning("%d records match no section", len(orphans))
		for _, id := range orphans {
			printDetail("%s", id)
		}
	}
}

type inspectSection struct {
	ID     string                 `json:"id"`
	Parts  []string               `json:"parts"`
	Label  [2]float64             `json:"label"`
	Record *records.SectionRecord `json:"record,omitempty"`
}

type inspectReport struct {
	Name       string           `json:"name,omitempty"`
	ViewBox    string           `json:"view_box"`
	Background string           `json:"background,omitempty"`
	Skipped    int              `json:"skipped"`
	Sections   []inspectSection `json:"sections"`
}

func printInspectJSON(d *diagram.Diagram, recs records.Lookup) error {
	report := inspectReport{
		Name:       d.Name,
		ViewBox:    d.ViewBox.String(),
		Background: d.Background,
		Skipped:    d.Skipped,
	}
	for _, id := range d.IDs() {
		s := inspectSection{ID: id}
		for _, p := range d.Parts(id) {
			s.Parts = append(s.Parts, p.CompositeID)
		}
		label, _ := d.Label(id)
		s.Label = [2]float64{label.X, label.Y}
		if rec, ok := recs.Get(id); ok {
			s.Record = &rec
		}
		report.Sections = append(report.Sections, s)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
