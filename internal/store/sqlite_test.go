package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleDocument(id string) *types.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &types.Document{
		ID:          id,
		Path:        id,
		Language:    "typescript",
		ContentHash: "abc123",
		ModTime:     now,
		IndexedAt:   now,
		Symbols: []types.Symbol{
			{
				ID:         types.SymbolID(id, "add", 1),
				Name:       "add",
				Kind:       types.KindFunction,
				File:       id,
				StartLine:  1,
				EndLine:    3,
				Visibility: types.VisibilityPublic,
			},
		},
		Chunks: []types.Chunk{
			{
				ID:        types.ChunkID(id, 1, 3),
				File:      id,
				StartLine: 1,
				EndLine:   3,
				Type:      types.ChunkFunction,
				SymbolIDs: []string{types.SymbolID(id, "add", 1)},
			},
		},
		Imports:   []string{"src/util.ts"},
		Externals: []string{"lodash"},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSaveAll_LoadAll_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	docA := sampleDocument("src/a.ts")
	docB := sampleDocument("src/b.ts")
	require.NoError(t, s.SaveAll(ctx, []*types.Document{docB, docA}))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// LoadAll returns documents sorted by ID.
	assert.Equal(t, "src/a.ts", loaded[0].ID)
	assert.Equal(t, "src/b.ts", loaded[1].ID)

	got := loaded[0]
	assert.Equal(t, docA.Language, got.Language)
	assert.Equal(t, docA.ContentHash, got.ContentHash)

	require.Len(t, got.Symbols, 1)
	assert.Equal(t, "add", got.Symbols[0].Name)
	assert.Equal(t, types.KindFunction, got.Symbols[0].Kind)
	assert.Equal(t, types.VisibilityPublic, got.Symbols[0].Visibility)
	assert.Equal(t, "src/a.ts", got.Symbols[0].File)

	require.Len(t, got.Chunks, 1)
	assert.Equal(t, types.ChunkFunction, got.Chunks[0].Type)
	assert.Equal(t, docA.Chunks[0].SymbolIDs, got.Chunks[0].SymbolIDs)
	// Raw content is never persisted.
	assert.Empty(t, got.Chunks[0].Content)

	assert.Equal(t, []string{"src/util.ts"}, got.Imports)
	assert.Equal(t, []string{"lodash"}, got.Externals)
}

func TestSaveAll_ReplacesPrevious(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []*types.Document{sampleDocument("src/old.ts")}))
	require.NoError(t, s.SaveAll(ctx, []*types.Document{sampleDocument("src/new.ts")}))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "src/new.ts", loaded[0].ID)
}

func TestUpsertDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("src/a.ts")
	require.NoError(t, s.UpsertDocument(ctx, doc))

	// Re-index with a changed hash and fewer symbols.
	doc.ContentHash = "def456"
	doc.Symbols = nil
	require.NoError(t, s.UpsertDocument(ctx, doc))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "def456", loaded[0].ContentHash)
	assert.Empty(t, loaded[0].Symbols)
}

func TestDeleteDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []*types.Document{
		sampleDocument("src/a.ts"),
		sampleDocument("src/b.ts"),
	}))
	require.NoError(t, s.DeleteDocument(ctx, "src/a.ts"))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "src/b.ts", loaded[0].ID)
}

func TestDeleteDocument_Unknown(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.DeleteDocument(context.Background(), "src/never.ts"))
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveAll(ctx, []*types.Document{sampleDocument("src/a.ts")}))
	require.NoError(t, s.Close())

	// Migrations are idempotent and data survives reopening.
	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	loaded, err := s2.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
