package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbcport/internal/dbctest"
	"github.com/ssargent/dbcport/pkg/schema"
)

func mustSchema(t testing.TB, name string, fields ...schema.Field) *schema.Schema {
	t.Helper()
	s, err := schema.New(name, fields)
	require.NoError(t, err)
	return s
}

// personSchema is ID int32 @0, Name string @4, Score float @8.
func personSchema(t testing.TB) *schema.Schema {
	return mustSchema(t, "Person",
		schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0},
		schema.Field{Name: "Name", Kind: schema.StringRef, Offset: 4},
		schema.Field{Name: "Score", Kind: schema.Float32, Offset: 8},
	)
}

func personFile() dbctest.File {
	return dbctest.File{
		RecordSize: 12,
		Records: [][]byte{
			dbctest.Row{}.Int32(1).Uint32(1).Float32(2.5),
			dbctest.Row{}.Int32(2).Uint32(0).Float32(-1),
		},
		StringTable:     []byte("\x00Alice\x00"),
		StringTableSize: 8,
	}
}

func TestDecode_Scenario(t *testing.T) {
	buf := append(personFile().Bytes(), 0) // pad the 7-byte table to its declared 8
	result, err := Decode(personSchema(t), buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, Metadata{
		RecordCount:     2,
		FieldCount:      3,
		RecordSize:      12,
		StringTableSize: 8,
		RecordsReturned: 2,
	}, result.Meta)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, []string{"ID", "Name", "Score"}, first.Names())
	id, _ := first.Get("ID")
	assert.Equal(t, int64(1), id.Int())
	name, _ := first.Get("Name")
	assert.Equal(t, StringValue, name.Type())
	assert.Equal(t, "Alice", name.Str())
	score, _ := first.Get("Score")
	assert.Equal(t, 2.5, score.Float())

	second := result.Records[1]
	name, _ = second.Get("Name")
	assert.Equal(t, "", name.Str())
	score, _ = second.Get("Score")
	assert.Equal(t, -1.0, score.Float())
}

func TestDecode_StringResolution(t *testing.T) {
	s := mustSchema(t, "S",
		schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0},
		schema.Field{Name: "Text", Kind: schema.StringRef, Offset: 4},
	)

	testCases := []struct {
		name   string
		offset uint32
		want   string
	}{
		{"zero offset is empty", 0, ""},
		{"second string", 4, "Bar"},
		{"suffix of a string", 1, "oo"},
		{"points at terminator", 3, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := dbctest.File{
				RecordSize:  8,
				Records:     [][]byte{dbctest.Row{}.Int32(1).Uint32(tc.offset)},
				StringTable: []byte("Foo\x00Bar\x00"),
			}.Bytes()

			result, err := Decode(s, buf, Options{})
			require.NoError(t, err)
			text, _ := result.Records[0].Get("Text")
			assert.Equal(t, tc.want, text.Str())
		})
	}
}

func TestDecode_StringWithoutTerminator(t *testing.T) {
	s := mustSchema(t, "S", schema.Field{Name: "Text", Kind: schema.StringRef, Offset: 0})
	buf := dbctest.File{
		RecordSize:  4,
		Records:     [][]byte{dbctest.Row{}.Uint32(1)},
		StringTable: []byte("\x00tail"),
	}.Bytes()

	result, err := Decode(s, buf, Options{})
	require.NoError(t, err)
	text, _ := result.Records[0].Get("Text")
	assert.Equal(t, "tail", text.Str())
}

func TestDecode_InvalidUTF8IsReplaced(t *testing.T) {
	s := mustSchema(t, "S", schema.Field{Name: "Text", Kind: schema.StringRef, Offset: 0})
	buf := dbctest.File{
		RecordSize:  4,
		Records:     [][]byte{dbctest.Row{}.Uint32(1)},
		StringTable: []byte("\x00a\xffb\x00"),
	}.Bytes()

	result, err := Decode(s, buf, Options{})
	require.NoError(t, err)
	text, _ := result.Records[0].Get("Text")
	assert.Equal(t, "a\uFFFDb", text.Str())
}

func TestDecode_Limit(t *testing.T) {
	s := mustSchema(t, "L", schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0})
	f := dbctest.File{RecordSize: 4}
	for i := 0; i < 3; i++ {
		f.Records = append(f.Records, dbctest.Row{}.Int32(int32(i+10)))
	}
	buf := f.Bytes()

	testCases := []struct {
		limit int
		want  int
	}{
		{0, 3},
		{-1, 3},
		{1, 1},
		{2, 2},
		{3, 3},
		{10, 3},
	}

	for _, tc := range testCases {
		result, err := Decode(s, buf, Options{Limit: tc.limit})
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.Meta.RecordsReturned, "limit %d", tc.limit)
		assert.Len(t, result.Records, tc.want)
		assert.LessOrEqual(t, result.Meta.RecordsReturned, result.Meta.RecordCount)
		if tc.want > 0 {
			id, _ := result.Records[0].Get("ID")
			assert.Equal(t, int64(10), id.Int())
		}
	}
}

func TestDecode_BadMagic(t *testing.T) {
	f := personFile()
	f.Magic = "XXXX"

	result, err := Decode(personSchema(t), f.Bytes(), Options{})
	assert.Nil(t, result)

	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "XXXX", ferr.Got)
	assert.Equal(t, DefaultMagic, ferr.Want)
}

func TestDecode_CustomMagic(t *testing.T) {
	f := personFile()
	f.Magic = "WDB2"

	_, err := Decode(personSchema(t), f.Bytes(), Options{Magic: "WDB2"})
	assert.NoError(t, err)
}

func TestDecode_TruncatedHeader(t *testing.T) {
	_, err := Decode(personSchema(t), []byte("WDBC\x01\x00"), Options{})
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Contains(t, ferr.Error(), "header")
}

func TestDecode_NegativeRecordCount(t *testing.T) {
	f := personFile()
	f.RecordCount = -1
	_, err := Decode(personSchema(t), f.Bytes(), Options{})
	var ferr *FormatError
	assert.True(t, errors.As(err, &ferr))
}

func TestDecode_FieldPastRecordSize(t *testing.T) {
	s := mustSchema(t, "Wide",
		schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0},
		schema.Field{Name: "Extra", Kind: schema.Int32, Offset: 8},
	)
	buf := dbctest.File{
		RecordSize: 8,
		Records:    [][]byte{dbctest.Row{}.Int32(1).Int32(2)},
	}.Bytes()

	result, err := Decode(s, buf, Options{})
	assert.Nil(t, result)

	var berr *BoundsError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "Extra", berr.Field)
	assert.Equal(t, 12, berr.Offset)
	assert.Equal(t, 8, berr.Limit)
}

func TestDecode_StringOffsetOutOfRange(t *testing.T) {
	f := personFile()
	f.Records[1] = dbctest.Row{}.Int32(2).Uint32(500).Float32(0)

	result, err := Decode(personSchema(t), append(f.Bytes(), 0), Options{})
	assert.Nil(t, result, "a failed decode returns no records")

	var berr *BoundsError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "Name", berr.Field)
	assert.Equal(t, 1, berr.Record)
	assert.Equal(t, 500, berr.Offset)
}

func TestDecode_StringTablePastEndOfFile(t *testing.T) {
	f := personFile()
	f.StringTableSize = 64 // header claims more than the file holds

	result, err := Decode(personSchema(t), f.Bytes(), Options{})
	require.NoError(t, err)
	name, _ := result.Records[0].Get("Name")
	assert.Equal(t, "Alice", name.Str())

	f.Records[0] = dbctest.Row{}.Int32(1).Uint32(40).Float32(0)
	_, err = Decode(personSchema(t), f.Bytes(), Options{})
	var berr *BoundsError
	assert.True(t, errors.As(err, &berr))
}

func TestDecode_TruncatedRecordArea(t *testing.T) {
	f := personFile()
	f.RecordCount = 5

	_, err := Decode(personSchema(t), f.Bytes(), Options{})
	var berr *BoundsError
	require.True(t, errors.As(err, &berr))
	assert.Contains(t, berr.Error(), "record area")
}

func TestDecode_LayoutMismatchWarning(t *testing.T) {
	f := personFile()
	f.FieldCount = 4
	f.RecordSize = 16

	result, err := Decode(personSchema(t), f.Bytes(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)

	var w *LayoutMismatchWarning
	require.True(t, errors.As(result.Warnings[0], &w))
	assert.Equal(t, 4, w.Declared)
	assert.Equal(t, 3, w.Computed)

	// the header's record size still drives navigation
	id, _ := result.Records[1].Get("ID")
	assert.Equal(t, int64(2), id.Int())
}

func TestDecode_AllKinds(t *testing.T) {
	s := mustSchema(t, "Kinds",
		schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0},
		schema.Field{Name: "Unsigned", Kind: schema.UInt32, Offset: 4},
		schema.Field{Name: "Signed", Kind: schema.Int32, Offset: 8},
		schema.Field{Name: "Guid", Kind: schema.UInt64, Offset: 12},
		schema.Field{Name: "Low", Kind: schema.UInt8, Offset: 20},
		schema.Field{Name: "High", Kind: schema.UInt8, Offset: 23},
		schema.Field{Name: "Delta", Kind: schema.Int64, Offset: 24},
	)
	row := dbctest.Row{}.Int32(7).Uint32(0xFFFFFFFF).Int32(-5).Uint64(0xFFFFFFFFFFFFFFFE).
		Uint8(0x12).Uint8(0).Uint8(0).Uint8(0xAB).Uint64(0xFFFFFFFFFFFFFFFE)
	buf := dbctest.File{RecordSize: 32, Records: [][]byte{row}}.Bytes()

	result, err := Decode(s, buf, Options{})
	require.NoError(t, err)
	rec := result.Records[0]

	v, _ := rec.Get("Unsigned")
	assert.Equal(t, IntValue, v.Type())
	assert.Equal(t, int64(4294967295), v.Int())
	v, _ = rec.Get("Signed")
	assert.Equal(t, int64(-5), v.Int())
	v, _ = rec.Get("Guid")
	assert.Equal(t, UintValue, v.Type())
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFE), v.Uint())
	v, _ = rec.Get("Low")
	assert.Equal(t, int64(0x12), v.Int())
	v, _ = rec.Get("High")
	assert.Equal(t, int64(0xAB), v.Int())
	v, _ = rec.Get("Delta")
	assert.Equal(t, IntValue, v.Type())
	assert.Equal(t, int64(-2), v.Int())
}

func localizedSchema(t testing.TB) *schema.Schema {
	return mustSchema(t, "Loc",
		schema.Field{Name: "ID", Kind: schema.Int32, Offset: 0},
		schema.Field{Name: "Name", Kind: schema.StringRef, Offset: 4, IsArray: true, Localized: true, Count: schema.LocalizedCount},
		schema.Field{Name: "Stats", Kind: schema.Int32, Offset: 72, IsArray: true, Count: 3},
		schema.Field{Name: "Bytes", Kind: schema.UInt8, Offset: 84, IsArray: true, Count: 2},
	)
}

func localizedFile() []byte {
	row := dbctest.Row{}.Int32(1).Uint32(1).Uint32(6)
	for i := 2; i < 16; i++ {
		row = row.Uint32(0)
	}
	row = row.Uint32(0xFF).Int32(10).Int32(20).Int32(30).Uint8(3).Uint8(4)
	return dbctest.File{
		RecordSize:  88,
		Records:     [][]byte{row},
		StringTable: []byte("\x00enUS\x00deDE\x00"),
	}.Bytes()
}

func TestDecode_ArrayExpansion(t *testing.T) {
	result, err := Decode(localizedSchema(t), localizedFile(), Options{})
	require.NoError(t, err)
	rec := result.Records[0]

	assert.Equal(t, []string{"ID", "Name", "Stats_1", "Stats_2", "Stats_3", "Bytes_1", "Bytes_2"}, rec.Names())
	name, _ := rec.Get("Name")
	assert.Equal(t, "enUS", name.Str())
	stat, _ := rec.Get("Stats_3")
	assert.Equal(t, int64(30), stat.Int())
	b, _ := rec.Get("Bytes_2")
	assert.Equal(t, int64(4), b.Int())
	_, ok := rec.Get("Name_2")
	assert.False(t, ok)
}

func TestDecode_AllLocales(t *testing.T) {
	result, err := Decode(localizedSchema(t), localizedFile(), Options{AllLocales: true})
	require.NoError(t, err)
	rec := result.Records[0]

	// bare name, locales 2..16, flag word, then the other fields
	assert.Equal(t, 1+15+1+3+2+1, rec.Len())
	v, _ := rec.Get("Name")
	assert.Equal(t, "enUS", v.Str())
	v, _ = rec.Get("Name_2")
	assert.Equal(t, "deDE", v.Str())
	v, _ = rec.Get("Name_16")
	assert.Equal(t, "", v.Str())
	v, _ = rec.Get("Name_flags")
	assert.Equal(t, int64(0xFF), v.Int())
	_, ok := rec.Get("Name_17")
	assert.False(t, ok)
}

func TestColumns(t *testing.T) {
	cols := Columns(localizedSchema(t), Options{})
	require.Len(t, cols, 7)
	assert.Equal(t, Column{Name: "Stats_2", Field: "Stats", Kind: schema.Int32, Element: 1, Offset: 76}, cols[3])
	assert.Equal(t, Column{Name: "Bytes_2", Field: "Bytes", Kind: schema.UInt8, Element: 1, Offset: 85}, cols[6])
}

func TestReader_Streaming(t *testing.T) {
	buf := append(personFile().Bytes(), 0)
	r, err := NewReader(personSchema(t), buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, r.Meta().RecordsReturned)
	var ids []int64
	for r.Next() {
		id, _ := r.Record().Get("ID")
		ids = append(ids, id.Int())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []int64{1, 2}, ids)
	assert.Equal(t, 2, r.Meta().RecordsReturned)
	assert.False(t, r.Next())
}

func TestReader_NilSchema(t *testing.T) {
	_, err := NewReader(nil, personFile().Bytes(), Options{})
	assert.ErrorIs(t, err, ErrNoSchema)
}

func TestDecode_StringsDoNotAliasBuffer(t *testing.T) {
	buf := append(personFile().Bytes(), 0)
	result, err := Decode(personSchema(t), buf, Options{})
	require.NoError(t, err)

	for i := range buf {
		buf[i] = 'x'
	}
	name, _ := result.Records[0].Get("Name")
	assert.Equal(t, "Alice", name.Str())
}
