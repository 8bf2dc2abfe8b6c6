package vectorindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	ix := New(4)
	require.NoError(t, ix.Add(
		[]string{"src/a.ts#1-10", "src/b.ts#5-20", "src/c.ts#1-3"},
		[][]float32{
			{0.25, -0.5, 0.125, 1.0},
			{1e-7, 3.14159, -2.71828, 0},
			{0, 0, 0, 1},
		},
	))
	require.NoError(t, ix.Save(path))

	loaded := New(4)
	require.NoError(t, loaded.Load(path))

	require.Equal(t, ix.Len(), loaded.Len())
	for _, id := range []string{"src/a.ts#1-10", "src/b.ts#5-20", "src/c.ts#1-3"} {
		want, ok := ix.Get(id)
		require.True(t, ok)
		got, ok := loaded.Get(id)
		require.True(t, ok, "missing %s after load", id)
		// float32 values survive the round trip bit for bit.
		assert.Equal(t, want, got)
	}
}

func TestSave_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	ix := New(8)
	require.NoError(t, ix.Save(path))

	loaded := New(8)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 0, loaded.Len())
	assert.Equal(t, 8, loaded.Dimension())
}

func TestLoad_MissingFile(t *testing.T) {
	ix := New(4)
	err := ix.Load(filepath.Join(t.TempDir(), "nope.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_CorruptMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a vector file at all"), 0644))

	ix := New(4)
	err := ix.Load(path)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestLoad_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	ix := New(4)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 2, 3, 4}}))
	require.NoError(t, ix.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-5], 0644))

	fresh := New(4)
	err = fresh.Load(path)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestSave_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	ix := New(2)
	require.NoError(t, ix.Add([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, ix.Save(path))

	ix.Delete([]string{"b"})
	require.NoError(t, ix.Save(path))

	loaded := New(2)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 1, loaded.Len())
	_, ok := loaded.Get("b")
	assert.False(t, ok)
}
