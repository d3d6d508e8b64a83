package codec

import (
	"errors"
	"fmt"
)

var ErrNoSchema = errors.New("no schema")

// FormatError reports a file that is not a DBC file of the expected variant.
type FormatError struct {
	Want string // expected magic tag
	Got  string // tag found in the file
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Msg != "" {
		return "dbc format: " + e.Msg
	}
	return fmt.Sprintf("dbc format: magic %q, want %q", e.Got, e.Want)
}

// BoundsError reports a read that would fall outside the record or the file.
type BoundsError struct {
	Field  string // empty for record-area problems
	Record int
	Offset int // offending byte offset
	Limit  int // bound it exceeded
	Msg    string
}

func (e *BoundsError) Error() string {
	where := fmt.Sprintf("record %d", e.Record)
	if e.Field != "" {
		where += " field " + e.Field
	}
	return fmt.Sprintf("dbc bounds: %s: %s (offset %d, limit %d)", where, e.Msg, e.Offset, e.Limit)
}

// LayoutMismatchWarning reports a schema whose word width disagrees with the
// file header. Decoding proceeds; the header's record size is authoritative.
type LayoutMismatchWarning struct {
	Schema   string
	Declared int // header FieldCount
	Computed int // schema TotalFields
}

func (w *LayoutMismatchWarning) Error() string {
	return fmt.Sprintf("schema %s spans %d words, file declares %d", w.Schema, w.Computed, w.Declared)
}
