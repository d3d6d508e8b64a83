package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("WDBC payload"), 0600))

	v, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 12, v.Len())
	assert.Equal(t, []byte("WDBC payload"), v.Bytes())

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Nil(t, v.Bytes())
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	v, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, v.Len())
	assert.NoError(t, v.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	assert.True(t, os.IsNotExist(err))
}
