/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/pipeline"
	"github.com/ssargent/dbcport/pkg/schema"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import every DBC file into the configured sink",
	Long: `Discover the DBC files in the configured directory, match them with their
schemas and write their records to the configured sink (SQL tables or the
pebble archive).

A file that fails to decode or write is reported and the others carry on.

Examples:
  dbcport import
  dbcport import --workers 8 --limit 100`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		// post-run hooks are skipped on error; flush metrics and logs here
		defer func() {
			if err != nil {
				err = errors.Join(err, container.Close())
			}
		}()

		cfg := container.GetConfig()
		if cmd.Flags().Changed("limit") {
			cfg.DBC.Limit, _ = cmd.Flags().GetInt("limit")
		}
		if cmd.Flags().Changed("workers") {
			cfg.DBC.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		doc, err := schema.LoadDocument(cfg.SchemaFile)
		if err != nil {
			return err
		}
		files, err := pipeline.Discover(cfg.DBC.Dir, nil)
		if err != nil {
			return err
		}
		jobs, skipped := pipeline.Match(files, doc)

		runID := ksuid.New()
		sink, err := container.OpenSink(cmd.Context(), runID)
		if err != nil {
			return err
		}
		defer sink.Close()

		container.GetLogger().Info("starting import",
			zap.String("run_id", runID.String()),
			zap.Int("files", len(jobs)),
			zap.Int("skipped", len(skipped)))

		report := container.NewRunner(sink).Run(cmd.Context(), runID, jobs, skipped...)
		printReport(cmd.OutOrStdout(), report)

		if failed := len(report.Failed()); failed > 0 {
			return fmt.Errorf("%d files failed to import", failed)
		}
		return nil
	},
}

func printReport(out io.Writer, report *pipeline.Report) {
	fmt.Fprintf(out, "Run %s\n", report.RunID)
	for _, o := range report.Outcomes {
		switch o.Status {
		case pipeline.StatusOK:
			fmt.Fprintf(out, "  ok       %-32s %8d records  %s\n", o.RecordType, o.Records, o.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(out, "  %-8s %-32s %v\n", o.Status, o.RecordType, o.Err)
		}
	}
	fmt.Fprintf(out, "%d records imported, %d failed, %d skipped\n",
		report.TotalRecords(), len(report.Failed()), len(report.Skipped()))
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int("limit", 0, "Stop each file after this many records (0 for all)")
	importCmd.Flags().Int("workers", 0, "Files decoded in parallel (default from config)")
}
