package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ssargent/dbcport/pkg/schema"
)

// Options controls a decode call.
type Options struct {
	Magic      string // expected magic tag, DefaultMagic when empty
	Limit      int    // stop after this many records; 0 or less means all
	AllLocales bool   // also emit the non-first elements of string arrays
}

// Metadata describes the decoded file.
type Metadata struct {
	RecordCount     int
	FieldCount      int
	RecordSize      int
	StringTableSize int
	RecordsReturned int
}

// Result is the outcome of an eager decode.
type Result struct {
	Meta     Metadata
	Records  []Record
	Warnings []error
}

// layout holds the absolute byte ranges of the file's sections.
type layout struct {
	recordStart int
	recordSize  int
	stringStart int
	stringSize  int
	stringEnd   int // min(stringStart+stringSize, len(buf))
}

// Reader decodes records one at a time. It is created by NewReader, which
// reads the header, checks the magic tag and computes the layout before the
// first record is touched.
type Reader struct {
	schema   *schema.Schema
	buf      []byte
	header   Header
	layout   layout
	cols     []Column
	limit    int
	next     int
	rec      Record
	err      error
	warnings []error
}

// NewReader prepares buf for decoding against s. Header, magic and layout
// problems are returned here; errors in individual records surface through
// Err after Next returns false.
func NewReader(s *schema.Schema, buf []byte, opts Options) (*Reader, error) {
	if s == nil {
		return nil, ErrNoSchema
	}

	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(opts.Magic); err != nil {
		return nil, err
	}

	r := &Reader{
		schema: s,
		buf:    buf,
		header: h,
		cols:   Columns(s, opts),
	}
	if err := r.computeLayout(); err != nil {
		return nil, err
	}

	r.limit = h.RecordCount
	if opts.Limit > 0 && opts.Limit < r.limit {
		r.limit = opts.Limit
	}
	return r, nil
}

func (r *Reader) computeLayout() error {
	h := r.header
	area := int64(h.RecordCount) * int64(h.RecordSize)
	stringStart := int64(HeaderSize) + area
	if stringStart > int64(len(r.buf)) {
		first := 0
		if h.RecordSize > 0 {
			first = (len(r.buf) - HeaderSize) / h.RecordSize
		}
		return &BoundsError{
			Record: first,
			Offset: int(stringStart),
			Limit:  len(r.buf),
			Msg:    "record area runs past end of file",
		}
	}

	for _, f := range r.schema.Fields() {
		if f.End() > h.RecordSize {
			return &BoundsError{
				Field:  f.Name,
				Record: 0,
				Offset: f.End(),
				Limit:  h.RecordSize,
				Msg:    "field ends past record size",
			}
		}
	}

	stringEnd := stringStart + int64(h.StringTableSize)
	if stringEnd > int64(len(r.buf)) {
		stringEnd = int64(len(r.buf))
	}
	r.layout = layout{
		recordStart: HeaderSize,
		recordSize:  h.RecordSize,
		stringStart: int(stringStart),
		stringSize:  h.StringTableSize,
		stringEnd:   int(stringEnd),
	}

	if r.schema.TotalFields() != h.FieldCount {
		r.warnings = append(r.warnings, &LayoutMismatchWarning{
			Schema:   r.schema.Name(),
			Declared: h.FieldCount,
			Computed: r.schema.TotalFields(),
		})
	}
	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Columns returns the columns every record is decoded to.
func (r *Reader) Columns() []Column {
	return append([]Column(nil), r.cols...)
}

// Warnings returns the non-fatal layout problems found in the header.
func (r *Reader) Warnings() []error {
	return append([]error(nil), r.warnings...)
}

// Meta returns the file metadata with RecordsReturned counting the records
// decoded so far.
func (r *Reader) Meta() Metadata {
	return Metadata{
		RecordCount:     r.header.RecordCount,
		FieldCount:      r.header.FieldCount,
		RecordSize:      r.header.RecordSize,
		StringTableSize: r.header.StringTableSize,
		RecordsReturned: r.next,
	}
}

// Next decodes the next record. It returns false when the limit is reached or
// a record fails to decode; check Err to tell the two apart.
func (r *Reader) Next() bool {
	if r.err != nil || r.next >= r.limit {
		return false
	}
	rec, err := r.decodeRecord(r.next)
	if err != nil {
		r.err = err
		r.rec = Record{}
		return false
	}
	r.rec = rec
	r.next++
	return true
}

// Record returns the record decoded by the last successful Next.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the error that stopped iteration, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) decodeRecord(index int) (Record, error) {
	base := r.layout.recordStart + index*r.layout.recordSize
	entries := make([]Entry, len(r.cols))
	for i, col := range r.cols {
		at := base + col.Offset
		v, err := r.readValue(col.Kind, at)
		if err != nil {
			if berr, ok := err.(*BoundsError); ok {
				berr.Record = index
				berr.Field = col.Field
			}
			return Record{}, err
		}
		entries[i] = Entry{Name: col.Name, Value: v}
	}
	return Record{entries: entries}, nil
}

func (r *Reader) readValue(kind schema.Kind, at int) (Value, error) {
	b := r.buf[at:]
	switch kind {
	case schema.Int32:
		return NewInt(int64(int32(binary.LittleEndian.Uint32(b)))), nil
	case schema.UInt32:
		return NewInt(int64(binary.LittleEndian.Uint32(b))), nil
	case schema.Float32:
		return NewFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))), nil
	case schema.UInt64:
		return NewUint(binary.LittleEndian.Uint64(b)), nil
	case schema.Int64:
		return NewInt(int64(binary.LittleEndian.Uint64(b))), nil
	case schema.UInt8:
		return NewInt(int64(b[0])), nil
	case schema.StringRef:
		s, err := r.resolveString(binary.LittleEndian.Uint32(b))
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	default:
		return Value{}, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// resolveString returns the NUL-terminated string at off in the string table.
func (r *Reader) resolveString(off uint32) (string, error) {
	if off == 0 {
		return "", nil
	}
	start := int64(r.layout.stringStart) + int64(off)
	if int64(off) >= int64(r.layout.stringSize) || start >= int64(r.layout.stringEnd) {
		return "", &BoundsError{
			Offset: int(off),
			Limit:  r.layout.stringEnd - r.layout.stringStart,
			Msg:    "string offset outside string table",
		}
	}

	raw := r.buf[start:r.layout.stringEnd]
	if n := bytes.IndexByte(raw, 0); n >= 0 {
		raw = raw[:n]
	}
	if !utf8.Valid(raw) {
		return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
	}
	return string(raw), nil
}

// Decode decodes buf eagerly. On error no records are returned.
func Decode(s *schema.Schema, buf []byte, opts Options) (*Result, error) {
	r, err := NewReader(s, buf, opts)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, r.limit)
	for r.Next() {
		records = append(records, r.Record())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Meta:     r.Meta(),
		Records:  records,
		Warnings: r.Warnings(),
	}, nil
}
