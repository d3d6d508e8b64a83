// Package dbctest assembles DBC buffers for tests.
package dbctest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// File describes a DBC file to assemble. Zero Magic means "WDBC"; zero
// FieldCount means RecordSize/4.
type File struct {
	Magic       string
	FieldCount  int
	RecordSize  int
	Records     [][]byte
	StringTable []byte

	// RecordCount overrides len(Records) in the header when non-zero.
	RecordCount int
	// StringTableSize overrides len(StringTable) in the header when non-zero.
	StringTableSize int
}

// Bytes assembles the file. Records shorter than RecordSize are zero padded.
func (f File) Bytes() []byte {
	magic := f.Magic
	if magic == "" {
		magic = "WDBC"
	}
	fieldCount := f.FieldCount
	if fieldCount == 0 {
		fieldCount = f.RecordSize / 4
	}
	count := f.RecordCount
	if count == 0 {
		count = len(f.Records)
	}
	strSize := f.StringTableSize
	if strSize == 0 {
		strSize = len(f.StringTable)
	}

	buf := make([]byte, 20, 20+len(f.Records)*f.RecordSize+len(f.StringTable))
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(count)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(fieldCount))
	binary.LittleEndian.PutUint32(buf[12:], uint32(int32(f.RecordSize)))
	binary.LittleEndian.PutUint32(buf[16:], uint32(int32(strSize)))

	for _, rec := range f.Records {
		row := make([]byte, f.RecordSize)
		copy(row, rec)
		buf = append(buf, row...)
	}
	return append(buf, f.StringTable...)
}

// Write stores the assembled file as dir/name and returns its path.
func (f File) Write(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, f.Bytes(), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Row builds little-endian record bytes.
type Row []byte

func (r Row) Int32(v int32) Row     { return binary.LittleEndian.AppendUint32(r, uint32(v)) }
func (r Row) Uint32(v uint32) Row   { return binary.LittleEndian.AppendUint32(r, v) }
func (r Row) Float32(v float32) Row { return binary.LittleEndian.AppendUint32(r, math.Float32bits(v)) }
func (r Row) Uint64(v uint64) Row   { return binary.LittleEndian.AppendUint64(r, v) }
func (r Row) Uint8(v uint8) Row     { return append(r, v) }
