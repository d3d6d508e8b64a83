package codec

import (
	"fmt"

	"github.com/ssargent/dbcport/internal/mmap"
	"github.com/ssargent/dbcport/pkg/schema"
)

// FileReader is a Reader over a read-only mapping of a DBC file. Records it
// returns stay valid after Close.
type FileReader struct {
	*Reader
	Path string
	view *mmap.View
}

// OpenFile maps path and prepares it for decoding against s.
func OpenFile(s *schema.Schema, path string, opts Options) (*FileReader, error) {
	view, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := NewReader(s, view.Bytes(), opts)
	if err != nil {
		view.Close()
		return nil, err
	}
	return &FileReader{Reader: r, Path: path, view: view}, nil
}

// Close releases the file mapping.
func (f *FileReader) Close() error {
	return f.view.Close()
}

// DecodeFile decodes the file at path eagerly.
func DecodeFile(s *schema.Schema, path string, opts Options) (*Result, error) {
	view, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer view.Close()

	return Decode(s, view.Bytes(), opts)
}
