//go:build bench
// +build bench

package codec

import (
	"fmt"
	"testing"

	"github.com/ssargent/dbcport/internal/dbctest"
	"github.com/ssargent/dbcport/pkg/schema"
)

func benchFile(records int) []byte {
	f := dbctest.File{RecordSize: 88, StringTable: []byte("\x00enUS\x00deDE\x00")}
	for i := 0; i < records; i++ {
		row := dbctest.Row{}.Int32(int32(i)).Uint32(1).Uint32(6)
		for j := 2; j < 16; j++ {
			row = row.Uint32(0)
		}
		row = row.Uint32(0xFF).Int32(10).Int32(20).Int32(30).Uint8(3).Uint8(4)
		f.Records = append(f.Records, row)
	}
	return f.Bytes()
}

func BenchmarkDecode(b *testing.B) {
	s, err := schema.New("Loc", []schema.Field{
		{Name: "ID", Kind: schema.Int32, Offset: 0},
		{Name: "Name", Kind: schema.StringRef, Offset: 4, IsArray: true, Localized: true, Count: schema.LocalizedCount},
		{Name: "Stats", Kind: schema.Int32, Offset: 72, IsArray: true, Count: 3},
		{Name: "Bytes", Kind: schema.UInt8, Offset: 84, IsArray: true, Count: 2},
	})
	if err != nil {
		b.Fatal(err)
	}

	for _, n := range []int{100, 10000} {
		buf := benchFile(n)
		b.Run(fmt.Sprintf("records=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(buf)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(s, buf, Options{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
