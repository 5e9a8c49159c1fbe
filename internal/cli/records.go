package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/records"
)

// recordsCommand groups the record management subcommands.
func (c *CLI) recordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage section records",
	}
	cmd.AddCommand(c.recordsImportCommand())
	return cmd
}

// recordsImportCommand copies a record file into a writable store.
func (c *CLI) recordsImportCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Copy records from a file or URL into a database",
		Long: `Read section records from a JSON or YAML document and write them into
the records store: a SQLite database (sqlite:path, *.db) or a MongoDB
collection (mongodb://...). Records with the same section id are replaced.

The target defaults to records.store from the config.`,
		Example: `  seatmap records import sections.yaml --to sqlite:venue.db
  seatmap records import https://example.com/sections.json --to mongodb://localhost:27017`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("to") {
				target = c.config.Records.Store
			}
			if target == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no target store: pass --to or set records.store")
			}
			n, err := c.importRecords(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			printSuccess("Imported %d records", n)
			printDetail("%s %s %s", args[0], iconArrow, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "target store: sqlite:path, *.db or mongodb:// URI")
	return cmd
}

// importRecords loads every record from source and puts it into target.
// Unlike a render, an unreadable source is an error here.
func (c *CLI) importRecords(ctx context.Context, source, target string) (int, error) {
	opts := records.OpenOptions{
		MongoDatabase:   c.config.Records.Database,
		MongoCollection: c.config.Records.Collection,
		Fetcher:         c.newFetcher(),
	}

	src, err := records.Open(ctx, source, opts)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	recs, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}

	dst, err := records.Open(ctx, target, opts)
	if err != nil {
		return 0, err
	}
	defer dst.Close()
	w, ok := dst.(records.Writer)
	if !ok {
		return 0, errors.New(errors.ErrCodeUnsupported, "cannot write records to %s", target)
	}
	if err := w.Put(ctx, recs); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "write records to %s", target)
	}
	loggerFromContext(ctx).Debug("imported records", "source", source, "target", target, "count", len(recs))
	return len(recs), nil
}
