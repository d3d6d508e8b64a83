package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/dbcport/internal/dbctest"
	"github.com/ssargent/dbcport/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("Person", []schema.Field{
		{Name: "ID", Kind: schema.Int32, Offset: 0},
		{Name: "Name", Kind: schema.StringRef, Offset: 4},
	})
	require.NoError(t, err)
	return s
}

func TestOpenFile(t *testing.T) {
	s := nameSchema(t)
	path := dbctest.File{
		RecordSize: 8,
		Records: [][]byte{
			dbctest.Row{}.Int32(1).Uint32(1),
			dbctest.Row{}.Int32(2).Uint32(7),
		},
		StringTable: []byte("\x00Alice\x00Bob\x00"),
	}.Write(t, t.TempDir(), "Person.dbc")

	fr, err := OpenFile(s, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, fr.Path)

	var names []string
	var kept []Record
	for fr.Next() {
		v, ok := fr.Record().Get("Name")
		require.True(t, ok)
		names = append(names, v.Str())
		kept = append(kept, fr.Record())
	}
	require.NoError(t, fr.Err())
	require.NoError(t, fr.Close())
	require.NoError(t, fr.Close())

	assert.Equal(t, []string{"Alice", "Bob"}, names)

	// records outlive the mapping
	v, _ := kept[1].Get("Name")
	assert.Equal(t, "Bob", v.Str())
}

func TestOpenFile_Errors(t *testing.T) {
	s := nameSchema(t)
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenFile(s, filepath.Join(dir, "nope.dbc"), Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad magic", func(t *testing.T) {
		path := dbctest.File{Magic: "XXXX", RecordSize: 8}.Write(t, dir, "Bad.dbc")
		_, err := OpenFile(s, path, Options{})
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
}

func TestDecodeFile(t *testing.T) {
	s := nameSchema(t)
	path := dbctest.File{
		RecordSize:  8,
		Records:     [][]byte{dbctest.Row{}.Int32(5).Uint32(1)},
		StringTable: []byte("\x00Eve\x00"),
	}.Write(t, t.TempDir(), "Person.dbc")

	result, err := DecodeFile(s, path, Options{})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, map[string]any{"ID": int64(5), "Name": "Eve"}, result.Records[0].Map())
	assert.Equal(t, 1, result.Meta.RecordCount)
}
