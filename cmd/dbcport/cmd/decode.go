/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file.dbc>",
	Short: "Decode a DBC file to JSON lines",
	Long: `Decode a DBC file against its schema and write one JSON object per record
to stdout, with keys in column order. The whole file is decoded first, so a
file that fails part way prints nothing.

Examples:
  dbcport decode ./dbc/Spell.dbc --limit 10
  dbcport decode ./dbc/Spell.dbc --all-locales`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, _ := cmd.Flags().GetString("type")

		opts := container.DecodeOptions()
		if cmd.Flags().Changed("limit") {
			opts.Limit, _ = cmd.Flags().GetInt("limit")
		}
		if cmd.Flags().Changed("all-locales") {
			opts.AllLocales, _ = cmd.Flags().GetBool("all-locales")
		}

		s, err := schemaFor(args[0], recordType)
		if err != nil {
			return err
		}

		n, err := decodeJSONLines(cmd.OutOrStdout(), s, args[0], opts)
		if err != nil {
			return err
		}
		cmd.PrintErrf("%d records\n", n)
		return nil
	},
}

// decodeJSONLines decodes path and writes its records to out, one JSON
// object per line. Nothing is written when the file fails to decode.
func decodeJSONLines(out io.Writer, s *schema.Schema, path string, opts codec.Options) (int, error) {
	result, err := codec.DecodeFile(s, path, opts)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(out)
	for _, rec := range result.Records {
		data, err := rec.MarshalJSON()
		if err != nil {
			return 0, err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return len(result.Records), nil
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().String("type", "", "Record type (default from the file name)")
	decodeCmd.Flags().Int("limit", 0, "Stop after this many records (0 for all)")
	decodeCmd.Flags().Bool("all-locales", false, "Emit every locale of localized strings")
}
