package codec

import (
	"github.com/goccy/go-json"
)

// Entry is one named value of a Record.
type Entry struct {
	Name  string
	Value Value
}

// Record is one decoded row: named values in column order. Records never
// reference the buffer they were decoded from.
type Record struct {
	entries []Entry
}

// NewRecord builds a record from entries in column order.
func NewRecord(entries ...Entry) Record {
	return Record{entries: append([]Entry(nil), entries...)}
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.entries)
}

// Get returns the value of the named column.
func (r Record) Get(name string) (Value, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// At returns the i-th entry.
func (r Record) At(i int) Entry {
	return r.entries[i]
}

// Entries returns a copy of the entries.
func (r Record) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Names returns the column names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Values returns the plain Go values in column order.
func (r Record) Values() []any {
	values := make([]any, len(r.entries))
	for i, e := range r.entries {
		values[i] = e.Value.Interface()
	}
	return values
}

// Map returns the record as a name to plain value map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.entries))
	for _, e := range r.entries {
		m[e.Name] = e.Value.Interface()
	}
	return m
}

// MarshalJSON encodes the record as an object whose keys keep column order.
func (r Record) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 32*len(r.entries)+2)
	b = append(b, '{')
	for i, e := range r.entries {
		if i > 0 {
			b = append(b, ',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		b = append(b, name...)
		b = append(b, ':')
		if b, err = e.Value.appendJSON(b); err != nil {
			return nil, err
		}
	}
	return append(b, '}'), nil
}
