package schema

import (
	"fmt"
	"sort"

	"github.com/ssargent/dbcport/pkg/descriptor"
)

// Build turns raw declarations into a validated schema. The result depends
// only on the set of declarations, not on their order.
func Build(name string, decls []descriptor.Declaration) (*Schema, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("schema %s: %w", name, ErrNoFields)
	}

	fields := make([]Field, 0, len(decls))
	for _, d := range decls {
		fields = append(fields, fieldFromDeclaration(d))
	}
	return New(name, fields)
}

func fieldFromDeclaration(d descriptor.Declaration) Field {
	class := Classify(d.Cell)
	f := Field{
		Name:      d.Name,
		Kind:      class.Kind,
		Offset:    d.Offset,
		Width:     class.Kind.Width(),
		Count:     1,
		IsArray:   class.Array,
		Localized: class.Localized,
	}

	switch {
	case class.Localized:
		f.Count = LocalizedCount
	case class.Array && d.Size != nil:
		f.Count = *d.Size
	}

	// the key may be declared through any 4-byte integer cell
	if f.Name == PrimaryKeyName && !f.IsArray && f.Kind == UInt32 {
		f.Kind = Int32
	}
	return f
}

// New builds a schema from fields given in any order. Width defaults to the
// kind's width and Count to 1; field indices are always recomputed.
func New(name string, fields []Field) (*Schema, error) {
	out := make([]Field, len(fields))
	for i, f := range fields {
		if f.Width == 0 {
			f.Width = f.Kind.Width()
		}
		if f.Count == 0 {
			f.Count = 1
		}
		assignIndices(&f)
		out[i] = f
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].Name < out[j].Name
	})

	return newSchema(name, out)
}

// assignIndices places f on the record's 4-byte word grid.
func assignIndices(f *Field) {
	f.FieldIndex = f.Offset / wordSize
	f.FieldIndices = nil
	f.BytePosition = nil
	if f.Count < 1 {
		return
	}

	switch {
	case f.IsArray && f.Width == 1:
		f.FieldIndices = make([]int, f.Count)
		for i := range f.FieldIndices {
			f.FieldIndices[i] = (f.Offset + i) / wordSize
		}
	case f.IsArray:
		words := f.Width / wordSize
		f.FieldIndices = make([]int, f.Count)
		for i := range f.FieldIndices {
			f.FieldIndices[i] = f.FieldIndex + i*words
		}
	case f.Width == 8:
		f.FieldIndices = []int{f.FieldIndex, f.FieldIndex + 1}
	case f.Width == 1:
		pos := f.Offset % wordSize
		f.BytePosition = &pos
	}
}
