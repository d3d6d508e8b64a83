package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DocumentVersion is the schema document format written by this package.
const DocumentVersion = 1

// Document is the persisted set of schemas, keyed by record type name. It is
// produced once from the descriptors and reused by every decode session.
type Document struct {
	Version   int                `json:"version"`
	Generated time.Time          `json:"generated"`
	Schemas   map[string]*Schema `json:"schemas"`
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:   DocumentVersion,
		Generated: time.Now().UTC(),
		Schemas:   make(map[string]*Schema),
	}
}

// Add stores s under its own name, replacing any previous schema.
func (d *Document) Add(s *Schema) {
	if d.Schemas == nil {
		d.Schemas = make(map[string]*Schema)
	}
	d.Schemas[s.Name()] = s
}

// Get finds a schema by record type name; an exact match wins over a
// case-insensitive one.
func (d *Document) Get(name string) (*Schema, error) {
	if s, ok := d.Schemas[name]; ok {
		return s, nil
	}
	for key, s := range d.Schemas {
		if strings.EqualFold(key, name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
}

// Names returns the record type names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Schemas))
	for name := range d.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fieldDoc struct {
	Name          string `json:"name"`
	Type          Kind   `json:"type"`
	Offset        int    `json:"offset"`
	IsArray       bool   `json:"isArray"`
	Count         int    `json:"count"`
	BytesPerField int    `json:"bytesPerField"`
	FieldIndex    int    `json:"fieldIndex"`
	FieldIndices  []int  `json:"fieldIndices,omitempty"`
	BytePosition  *int   `json:"bytePosition,omitempty"`
	Localized     bool   `json:"localized,omitempty"`
}

type schemaDoc struct {
	Name        string     `json:"name"`
	TotalFields int        `json:"totalFields"`
	Fields      []fieldDoc `json:"fields"`
}

// MarshalJSON writes the schema in document form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	doc := schemaDoc{
		Name:        s.name,
		TotalFields: s.totalFields,
		Fields:      make([]fieldDoc, len(s.fields)),
	}
	for i, f := range s.fields {
		doc.Fields[i] = fieldDoc{
			Name:          f.Name,
			Type:          f.Kind,
			Offset:        f.Offset,
			IsArray:       f.IsArray,
			Count:         f.Count,
			BytesPerField: f.Width,
			FieldIndex:    f.FieldIndex,
			FieldIndices:  f.FieldIndices,
			BytePosition:  f.BytePosition,
			Localized:     f.Localized,
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads a schema in document form and validates it. Offsets must
// be ascending and non-overlapping, and the stored indices and record width
// must agree with the ones recomputed from the offsets.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var doc schemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return &DocumentError{Msg: "malformed schema", Err: err}
	}

	fields := make([]Field, len(doc.Fields))
	for i, fd := range doc.Fields {
		fields[i] = Field{
			Name:      fd.Name,
			Kind:      fd.Type,
			Offset:    fd.Offset,
			Width:     fd.BytesPerField,
			Count:     fd.Count,
			IsArray:   fd.IsArray,
			Localized: fd.Localized,
		}
		assignIndices(&fields[i])
	}

	// newSchema rejects non-monotonic offsets instead of re-sorting them
	built, err := newSchema(doc.Name, fields)
	if err != nil {
		return &DocumentError{Schema: doc.Name, Msg: "invalid layout", Err: err}
	}
	for i, fd := range doc.Fields {
		f := built.fields[i]
		if f.FieldIndex != fd.FieldIndex || !reflect.DeepEqual(f.FieldIndices, nilIfEmpty(fd.FieldIndices)) {
			return &DocumentError{Schema: doc.Name,
				Msg: fmt.Sprintf("field %s: stored field index disagrees with offset %d", fd.Name, fd.Offset)}
		}
	}
	if built.totalFields != doc.TotalFields {
		return &DocumentError{Schema: doc.Name,
			Msg: fmt.Sprintf("totalFields %d, layout spans %d", doc.TotalFields, built.totalFields)}
	}

	*s = *built
	return nil
}

func nilIfEmpty(v []int) []int {
	if len(v) == 0 {
		return nil
	}
	return v
}

// MarshalDocument encodes d as indented JSON.
func MarshalDocument(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument decodes and validates a schema document.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	if d.Version != DocumentVersion {
		return nil, &DocumentError{Msg: fmt.Sprintf("unsupported version %d (want %d)", d.Version, DocumentVersion)}
	}
	if d.Schemas == nil {
		d.Schemas = make(map[string]*Schema)
	}
	for key, s := range d.Schemas {
		if s == nil {
			return nil, &DocumentError{Schema: key, Msg: "empty schema entry"}
		}
		if s.Name() != key {
			return nil, &DocumentError{Schema: key, Msg: fmt.Sprintf("entry holds schema %q", s.Name())}
		}
	}
	return &d, nil
}

// SaveDocument writes d to path, creating the parent directory.
func SaveDocument(d *Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}

	data, err := MarshalDocument(d)
	if err != nil {
		return fmt.Errorf("failed to marshal schema document: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema document %s: %w", path, err)
	}
	return nil
}

// LoadDocument reads and validates the schema document at path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}
