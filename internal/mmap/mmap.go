// Package mmap provides read-only views of whole files.
package mmap

import (
	"fmt"
	"os"
)

// View is a read-only view of a file's contents. The bytes must not be used
// after Close.
type View struct {
	data   []byte
	mapped bool
}

// Open maps path read-only. Empty files yield an empty view.
func Open(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &View{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap %s: file too large (%d bytes)", path, size)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &View{data: data, mapped: mapped}, nil
}

// Bytes returns the file contents.
func (v *View) Bytes() []byte {
	return v.data
}

// Len returns the file size.
func (v *View) Len() int {
	return len(v.data)
}

// Close releases the view. It is safe to call more than once.
func (v *View) Close() error {
	data := v.data
	v.data = nil
	if data == nil || !v.mapped {
		return nil
	}
	return unmapFile(data)
}
