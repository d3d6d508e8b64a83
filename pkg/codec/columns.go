package codec

import (
	"strconv"

	"github.com/ssargent/dbcport/pkg/schema"
)

// Column is one output column of a decoded record.
type Column struct {
	Name    string
	Field   string      // schema field the column is read from
	Kind    schema.Kind // kind of the single element read
	Element int         // element index within the field
	Offset  int         // byte offset of the element within the record
}

// Columns lists the columns a record of s decodes to, in order.
func Columns(s *schema.Schema, opts Options) []Column {
	cols := make([]Column, 0, s.TotalFields())
	for _, f := range s.Fields() {
		cols = appendFieldColumns(cols, f, opts.AllLocales)
	}
	return cols
}

func appendFieldColumns(cols []Column, f schema.Field, allLocales bool) []Column {
	col := func(name string, kind schema.Kind, i int) Column {
		return Column{Name: name, Field: f.Name, Kind: kind, Element: i, Offset: f.Offset + i*f.Width}
	}

	switch {
	case !f.IsArray:
		return append(cols, col(f.Name, f.Kind, 0))

	case f.Kind == schema.StringRef:
		cols = append(cols, col(f.Name, f.Kind, 0))
		if !allLocales {
			return cols
		}
		n := f.Count
		if f.Localized {
			n = f.Count - 1
		}
		for i := 1; i < n; i++ {
			cols = append(cols, col(f.Name+"_"+strconv.Itoa(i+1), f.Kind, i))
		}
		if f.Localized {
			cols = append(cols, col(f.Name+"_flags", schema.UInt32, f.Count-1))
		}
		return cols

	default:
		for i := 0; i < f.Count; i++ {
			cols = append(cols, col(f.Name+"_"+strconv.Itoa(i+1), f.Kind, i))
		}
		return cols
	}
}
