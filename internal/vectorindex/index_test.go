package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, -0.7, 0.648}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_ZeroNorm(t *testing.T) {
	a := []float32{1, 2, 3}
	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, CosineSimilarity(a, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestAdd_DimensionMismatch(t *testing.T) {
	ix := New(3)
	err := ix.Add([]string{"a"}, [][]float32{{1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, ix.Len())
}

func TestAdd_Overwrites(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 0}}))
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{0, 1}}))

	assert.Equal(t, 1, ix.Len())
	v, ok := ix.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, v)
}

func TestGet_ReturnsCopy(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 0}}))

	v, ok := ix.Get("a")
	require.True(t, ok)
	v[0] = 99

	again, _ := ix.Get("a")
	assert.Equal(t, []float32{1, 0}, again)
}

func TestSearch_RankingAndK(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add(
		[]string{"east", "north", "northeast"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	))

	results, err := ix.Search([]float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "northeast", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 0}}))

	results, err := ix.Search([]float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_NonPositiveK(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 0}}))

	results, err := ix.Search([]float32{1, 0}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ix.Search([]float32{1, 0}, -3, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Exclude(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add(
		[]string{"self", "other"},
		[][]float32{{1, 0}, {1, 0.1}},
	))

	results, err := ix.Search([]float32{1, 0}, 5, map[string]bool{"self": true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "other", results[0].ID)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix := New(3)
	_, err := ix.Search([]float32{1, 0}, 5, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_TieBreaksByID(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add(
		[]string{"b", "a"},
		[][]float32{{1, 0}, {2, 0}},
	))

	// Both vectors point the same way, so scores tie exactly.
	results, err := ix.Search([]float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
}

func TestDelete(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}))

	ix.Delete([]string{"a", "unknown"})

	assert.Equal(t, 1, ix.Len())
	_, ok := ix.Get("a")
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"old1", "old2"}, [][]float32{{1, 0}, {0, 1}}))

	err := ix.Replace(
		[]string{"old1", "old2"},
		[]string{"new1"},
		[][]float32{{1, 1}},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, ix.Len())
	_, ok := ix.Get("old1")
	assert.False(t, ok)
	_, ok = ix.Get("new1")
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]string{"a"}, [][]float32{{1, 0}}))
	ix.Clear()
	assert.Equal(t, 0, ix.Len())
}
