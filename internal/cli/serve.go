package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/server"
)

// serveCommand starts the chart server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr            string
		recordsSrc      string
		watch           bool
		allowAllOrigins bool
		noCache         bool
	)

	cmd := &cobra.Command{
		Use:   "serve [diagram]",
		Short: "Serve the live seating chart over HTTP",
		Long: `Serve a browser page with the live chart, the rendered chart in every
format and a small JSON API. Each browser tab gets its own interaction
session over a websocket.

Local diagram and records files are watched and reloaded on change unless
--watch=false is given.`,
		Example: `  seatmap serve venue.json --records sections.yaml
  seatmap serve --addr :9090 --allow-all-origins`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config
			flags := cmd.Flags()

			opts := c.baseOptions(diagramArg(args))
			if flags.Changed("records") {
				opts.Records = recordsSrc
			}
			if opts.Diagram == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no diagram: pass one or set diagram.source")
			}

			sc := server.Config{
				Addr:            cfg.Server.Addr,
				AllowAllOrigins: cfg.Server.AllowAllOrigins,
				Watch:           cfg.Server.Watch,
				Debounce:        cfg.Server.DebounceDuration(),
				Options:         opts,
				TooltipSize:     cfg.Tooltip.Size(),
				Logger:          c.Logger,
			}
			if flags.Changed("addr") {
				sc.Addr = addr
			}
			if flags.Changed("watch") {
				sc.Watch = watch
			}
			if flags.Changed("allow-all-origins") {
				sc.AllowAllOrigins = allowAllOrigins
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			sc.Runner = runner

			srv, err := server.New(sc)
			if err != nil {
				return err
			}
			printInfo("Serving %s on %s", opts.Diagram, StyleLink.Render("http://"+sc.Addr))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().StringVarP(&recordsSrc, "records", "r", "", "section records: file, URL, sqlite:path or mongodb:// URI")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload when local sources change")
	cmd.Flags().BoolVar(&allowAllOrigins, "allow-all-origins", false, "allow cross-origin requests from any origin")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
