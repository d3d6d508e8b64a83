/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/pipeline"
	"github.com/ssargent/dbcport/pkg/schema"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.dbc>",
	Short: "Show the header and computed layout of a DBC file",
	Long: `Read the header of a DBC file, compute its layout against the schema of its
record type and report any disagreement between the two.

Examples:
  dbcport inspect ./dbc/Spell.dbc
  dbcport inspect ./dbc/spell_v2.dbc --type Spell`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, _ := cmd.Flags().GetString("type")

		s, err := schemaFor(args[0], recordType)
		if err != nil {
			return err
		}

		fr, err := codec.OpenFile(s, args[0], container.DecodeOptions())
		if err != nil {
			return err
		}
		defer fr.Close()

		printInspection(cmd.OutOrStdout(), fr)
		return nil
	},
}

// schemaFor loads the schema for path from the configured document, using
// recordType when set and the file name otherwise.
func schemaFor(path, recordType string) (*schema.Schema, error) {
	doc, err := schema.LoadDocument(container.GetConfig().SchemaFile)
	if err != nil {
		return nil, err
	}
	if recordType == "" {
		recordType = pipeline.RecordType(path)
	}
	return doc.Get(recordType)
}

func printInspection(out io.Writer, fr *codec.FileReader) {
	h := fr.Header()
	stringStart := h.StringTableOffset()

	fmt.Fprintf(out, "File:              %s\n", fr.Path)
	fmt.Fprintf(out, "Magic:             %s\n", h.Magic)
	fmt.Fprintf(out, "Records:           %d\n", h.RecordCount)
	fmt.Fprintf(out, "Fields:            %d\n", h.FieldCount)
	fmt.Fprintf(out, "Record size:       %d\n", h.RecordSize)
	fmt.Fprintf(out, "String table size: %d\n", h.StringTableSize)
	fmt.Fprintf(out, "Record area:       [%d, %d)\n", codec.HeaderSize, stringStart)
	fmt.Fprintf(out, "String table:      [%d, %d)\n", stringStart, stringStart+h.StringTableSize)
	fmt.Fprintf(out, "Columns:           %d\n", len(fr.Columns()))
	for _, w := range fr.Warnings() {
		fmt.Fprintf(out, "Warning:           %v\n", w)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("type", "", "Record type (default from the file name)")
}
