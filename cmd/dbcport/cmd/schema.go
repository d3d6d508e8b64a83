/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/descriptor"
	"github.com/ssargent/dbcport/pkg/schema"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Build and inspect schema documents",
}

// schemaBuildCmd represents the schema build command
var schemaBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the schema document from field descriptors",
	Long: `Scan the descriptor directory, build one schema per record type and save
them as a versioned schema document.

Record types without any field declaration cannot be given a schema and are
listed, as are declarations that failed to parse.

Examples:
  dbcport schema build
  dbcport schema build --descriptors ./src/dbc --out ./schemas.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		dir, _ := cmd.Flags().GetString("descriptors")
		out, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = cfg.Descriptors.Dir
		}
		if out == "" {
			out = cfg.SchemaFile
		}

		result, err := buildSchemas(dir, cfg.Descriptors.Extensions)
		if err != nil {
			return err
		}
		if err := schema.SaveDocument(result.Document, out); err != nil {
			return err
		}

		logger := container.GetLogger()
		for _, perr := range result.ParseErrors {
			logger.Warn("descriptor parse error", zap.Error(perr))
		}
		for name, berr := range result.Failed {
			logger.Warn("schema rejected", zap.String("record_type", name), zap.Error(berr))
		}

		cmd.Printf("✅ Wrote %d schemas to %s\n", len(result.Document.Schemas), out)
		if len(result.Unschemaable) > 0 {
			cmd.Printf("Unschemaable record types (%d):\n", len(result.Unschemaable))
			for _, name := range result.Unschemaable {
				cmd.Printf("  %s\n", name)
			}
		}
		if n := len(result.ParseErrors); n > 0 {
			cmd.Printf("%d declarations failed to parse\n", n)
		}
		if n := len(result.Failed); n > 0 {
			cmd.Printf("%d record types had an invalid layout\n", n)
		}
		return nil
	},
}

// schemaShowCmd represents the schema show command
var schemaShowCmd = &cobra.Command{
	Use:   "show <type>",
	Short: "Print the field table of a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.LoadDocument(container.GetConfig().SchemaFile)
		if err != nil {
			return err
		}
		s, err := doc.Get(args[0])
		if err != nil {
			return err
		}
		printSchema(cmd.OutOrStdout(), s)
		return nil
	},
}

// buildResult is the outcome of building schemas from a descriptor directory.
type buildResult struct {
	Document     *schema.Document
	Unschemaable []string
	Failed       map[string]error
	ParseErrors  []*descriptor.ParseError
}

func buildSchemas(dir string, exts []string) (*buildResult, error) {
	units, err := descriptor.ScanDir(dir, exts)
	if err != nil {
		return nil, err
	}

	result := &buildResult{Document: schema.NewDocument(), Failed: make(map[string]error)}
	for _, unit := range units {
		result.ParseErrors = append(result.ParseErrors, unit.Errors...)

		s, err := schema.Build(unit.Name, unit.Declarations)
		switch {
		case errors.Is(err, schema.ErrNoFields):
			result.Unschemaable = append(result.Unschemaable, unit.Name)
		case err != nil:
			result.Failed[unit.Name] = err
		default:
			result.Document.Add(s)
		}
	}
	return result, nil
}

func printSchema(out io.Writer, s *schema.Schema) {
	fmt.Fprintf(out, "%s: %d fields, %d bytes per record\n\n", s.Name(), s.TotalFields(), s.RecordSize())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tOFFSET\tCOUNT\tINDEX")
	for _, f := range s.Fields() {
		index := strconv.Itoa(f.FieldIndex)
		if f.BytePosition != nil {
			index += "." + strconv.Itoa(*f.BytePosition)
		}
		count := "-"
		if f.IsArray {
			count = strconv.Itoa(f.Count)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", f.Name, f.Kind, f.Offset, count, index)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaBuildCmd)
	schemaCmd.AddCommand(schemaShowCmd)

	schemaBuildCmd.Flags().String("descriptors", "", "Descriptor directory (default from config)")
	schemaBuildCmd.Flags().String("out", "", "Schema document path (default from config)")
}
