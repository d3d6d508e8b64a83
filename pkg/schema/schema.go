package schema

import (
	"fmt"
	"reflect"
)

// PrimaryKeyName is the field that serves as the record's primary key.
const PrimaryKeyName = "ID"

// wordSize is the unit of the record's field-index grid.
const wordSize = 4

// Field describes one named attribute of a record.
type Field struct {
	Name         string
	Kind         Kind
	Offset       int   // byte offset from the start of the record
	Width        int   // bytes per element
	Count        int   // number of elements, 1 for scalars
	IsArray      bool  // declared as an array cell, even when Count is 1
	Localized    bool  // 16 locale strings plus a flag word
	FieldIndex   int   // Offset / 4
	FieldIndices []int // per-element word indices for arrays, both words for 8-byte fields
	BytePosition *int  // Offset % 4 for lone byte scalars
}

// Size returns the number of bytes the field occupies.
func (f Field) Size() int {
	return f.Count * f.Width
}

// End returns the offset of the first byte after the field.
func (f Field) End() int {
	return f.Offset + f.Size()
}

func (f Field) clone() Field {
	if f.FieldIndices != nil {
		f.FieldIndices = append([]int(nil), f.FieldIndices...)
	}
	if f.BytePosition != nil {
		pos := *f.BytePosition
		f.BytePosition = &pos
	}
	return f
}

// Schema is the ordered, validated field layout of one record type. It is
// immutable once built and safe for concurrent use.
type Schema struct {
	name        string
	totalFields int
	fields      []Field
	byName      map[string]int
}

// newSchema validates fields, which must already be sorted by offset and
// carry their indices, and computes the record width.
func newSchema(name string, fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %s: %w", name, ErrNoFields)
	}

	s := &Schema{
		name:   name,
		fields: fields,
		byName: make(map[string]int, len(fields)),
	}

	maxEnd := 0
	owner := -1
	for i, f := range fields {
		if f.Name == "" {
			return nil, &LayoutError{Schema: name, Msg: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, &LayoutError{Schema: name, Field: f.Name, Msg: "duplicate field name"}
		}
		s.byName[f.Name] = i

		if !f.Kind.Valid() {
			return nil, &LayoutError{Schema: name, Field: f.Name, Msg: fmt.Sprintf("invalid kind %d", f.Kind)}
		}
		if f.Width != f.Kind.Width() {
			return nil, &LayoutError{Schema: name, Field: f.Name,
				Msg: fmt.Sprintf("width %d does not match kind %s", f.Width, f.Kind)}
		}
		if f.Offset < 0 {
			return nil, &LayoutError{Schema: name, Field: f.Name, Msg: fmt.Sprintf("negative offset %d", f.Offset)}
		}
		if f.Count < 1 {
			return nil, &LayoutError{Schema: name, Field: f.Name, Msg: fmt.Sprintf("element count %d", f.Count)}
		}
		if !f.IsArray && f.Count != 1 {
			return nil, &LayoutError{Schema: name, Field: f.Name, Msg: "scalar field with more than one element"}
		}
		if f.Localized && (f.Kind != StringRef || f.Count != LocalizedCount) {
			return nil, &LayoutError{Schema: name, Field: f.Name,
				Msg: fmt.Sprintf("localized string must be %d string elements", LocalizedCount)}
		}

		if i > 0 && f.Offset < fields[i-1].Offset {
			return nil, &LayoutError{Schema: name, Field: f.Name,
				Msg: fmt.Sprintf("offset %d is below preceding field %s at %d", f.Offset, fields[i-1].Name, fields[i-1].Offset)}
		}
		if i > 0 && f.Offset == fields[i-1].Offset {
			prev := fields[i-1]
			return nil, &LayoutError{Schema: name, Field: f.Name,
				Msg: fmt.Sprintf("offset %d overlaps %s (%d..%d)", f.Offset, prev.Name, prev.Offset, prev.End())}
		}
		if owner >= 0 && f.Offset < maxEnd {
			prev := fields[owner]
			if !packed(prev, f) {
				return nil, &LayoutError{Schema: name, Field: f.Name,
					Msg: fmt.Sprintf("offset %d overlaps %s (%d..%d)", f.Offset, prev.Name, prev.Offset, prev.End())}
			}
		}
		if f.End() > maxEnd {
			maxEnd = f.End()
			owner = i
		}
	}

	if i, ok := s.byName[PrimaryKeyName]; ok {
		pk := fields[i]
		if pk.IsArray || pk.Kind != Int32 {
			return nil, &LayoutError{Schema: name, Field: pk.Name, Msg: "primary key must be a scalar int32"}
		}
	}

	s.totalFields = (maxEnd + wordSize - 1) / wordSize
	return s, nil
}

// Name returns the record type name.
func (s *Schema) Name() string {
	return s.name
}

// TotalFields returns the record width in 4-byte words.
func (s *Schema) TotalFields() int {
	return s.totalFields
}

// RecordSize returns the number of bytes the schema's fields span.
func (s *Schema) RecordSize() int {
	end := 0
	for _, f := range s.fields {
		if f.End() > end {
			end = f.End()
		}
	}
	return end
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the fields in offset order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// FieldAt returns the i-th field in offset order.
func (s *Schema) FieldAt(i int) Field {
	return s.fields[i].clone()
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i].clone(), true
}

// PrimaryKey returns the primary key field name, or "" when the record type
// declares none.
func (s *Schema) PrimaryKey() string {
	if _, ok := s.byName[PrimaryKeyName]; ok {
		return PrimaryKeyName
	}
	return ""
}

// Equal reports whether two schemas describe the same layout.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.name == other.name &&
		s.totalFields == other.totalFields &&
		reflect.DeepEqual(s.fields, other.fields)
}

// packed reports whether two overlapping fields are byte-wide sub-fields of
// one word.
func packed(a, b Field) bool {
	word := a.Offset / wordSize
	return a.Width == 1 && b.Width == 1 &&
		(a.End()-1)/wordSize == word &&
		b.Offset/wordSize == word && (b.End()-1)/wordSize == word
}
