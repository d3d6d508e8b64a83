//go:build fuzz
// +build fuzz

package codec

import (
	"errors"
	"testing"

	"github.com/ssargent/dbcport/internal/dbctest"
	"github.com/ssargent/dbcport/pkg/schema"
)

// FuzzDecode feeds arbitrary buffers to the decoder. It must never panic, and
// every failure must be one of the typed errors.
func FuzzDecode(f *testing.F) {
	s, err := schema.New("Fuzz", []schema.Field{
		{Name: "ID", Kind: schema.Int32, Offset: 0},
		{Name: "Name", Kind: schema.StringRef, Offset: 4},
		{Name: "Guid", Kind: schema.UInt64, Offset: 8},
		{Name: "Flags", Kind: schema.UInt8, Offset: 16, IsArray: true, Count: 4},
	})
	if err != nil {
		f.Fatal(err)
	}

	f.Add(dbctest.File{
		RecordSize:  20,
		Records:     [][]byte{dbctest.Row{}.Int32(1).Uint32(1).Uint64(9).Uint32(0x01020304)},
		StringTable: []byte("\x00hello\x00"),
	}.Bytes())
	f.Add([]byte("WDBC"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, buf []byte) {
		result, err := Decode(s, buf, Options{Limit: 64})
		if err != nil {
			var ferr *FormatError
			var berr *BoundsError
			if !errors.As(err, &ferr) && !errors.As(err, &berr) {
				t.Fatalf("untyped decode error: %v", err)
			}
			if result != nil {
				t.Fatal("failed decode returned a result")
			}
			return
		}
		if result.Meta.RecordsReturned > result.Meta.RecordCount {
			t.Fatalf("returned %d of %d records", result.Meta.RecordsReturned, result.Meta.RecordCount)
		}
	})
}
