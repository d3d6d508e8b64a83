package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

// unitSchema is a small layout touching every column type the sinks map.
func unitSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("CreatureUnit", []schema.Field{
		{Name: "ID", Kind: schema.Int32, Offset: 0},
		{Name: "Name", Kind: schema.StringRef, Offset: 4},
		{Name: "Speed", Kind: schema.Float32, Offset: 8},
		{Name: "Stats", Kind: schema.Int32, Offset: 12, IsArray: true, Count: 2},
		{Name: "Guid", Kind: schema.UInt64, Offset: 20},
	})
	require.NoError(t, err)
	return s
}

func unitRecord(id int64, name string, speed float64, s1, s2 int64, guid uint64) codec.Record {
	return codec.NewRecord(
		codec.Entry{Name: "ID", Value: codec.NewInt(id)},
		codec.Entry{Name: "Name", Value: codec.NewString(name)},
		codec.Entry{Name: "Speed", Value: codec.NewFloat(speed)},
		codec.Entry{Name: "Stats_1", Value: codec.NewInt(s1)},
		codec.Entry{Name: "Stats_2", Value: codec.NewInt(s2)},
		codec.Entry{Name: "Guid", Value: codec.NewUint(guid)},
	)
}

func unitRecords(n int) []codec.Record {
	records := make([]codec.Record, n)
	for i := range records {
		records[i] = unitRecord(int64(i+1), "unit", 1.5, int64(i), int64(i*2), uint64(i))
	}
	return records
}

var maxGuid = uint64(math.MaxUint64)
