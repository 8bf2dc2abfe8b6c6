package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/pkg/types"
)

const mathSource = `export function add(a: number, b: number): number {
  return a + b;
}

export function sub(a: number, b: number): number {
  return a - b;
}
`

const formatSource = `export function formatDate(d: Date): string {
  return d.toISOString();
}
`

const mainSource = `import { add, sub } from './math';
import { formatDate } from './format';

export function run(): void {
  console.log(formatDate(new Date()), add(1, sub(3, 2)));
}
`

// newTestWorkspace creates a small TypeScript workspace and a coordinator
// over it.
func newTestWorkspace(t *testing.T) (string, *Coordinator) {
	t.Helper()
	root := t.TempDir()
	writeSource(t, root, "src/math.ts", mathSource)
	writeSource(t, root, "src/format.ts", formatSource)
	writeSource(t, root, "src/main.ts", mainSource)

	coord, err := New(Config{Root: root})
	require.NoError(t, err)
	t.Cleanup(func() { _ = coord.Close() })
	return root, coord
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func buildWorkspace(t *testing.T, coord *Coordinator) *Statistics {
	t.Helper()
	stats, err := coord.BuildFull(context.Background())
	require.NoError(t, err)
	return stats
}

func TestNew_EmptyWorkspace(t *testing.T) {
	coord, err := New(Config{Root: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = coord.Close() }()

	status := coord.Status()
	assert.False(t, status.IsIndexing)
	assert.Zero(t, status.DocumentCount)
	assert.True(t, coord.NeedsRebuild())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(Config{Root: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestBuildFull_IndexesWorkspace(t *testing.T) {
	_, coord := newTestWorkspace(t)
	stats := buildWorkspace(t, coord)

	assert.Equal(t, 3, stats.FilesIndexed)
	assert.Zero(t, stats.FilesReused)
	assert.Zero(t, stats.FilesFailed)
	assert.Positive(t, stats.SymbolsExtracted)
	assert.Positive(t, stats.ChunksCreated)

	status := coord.Status()
	assert.Equal(t, 3, status.DocumentCount)
	assert.Equal(t, stats.ChunksCreated, status.ChunkCount)
	assert.Equal(t, stats.ChunksCreated, status.VectorCount)
	assert.False(t, coord.NeedsRebuild())
}

func TestBuildFull_ReusesUnchangedFiles(t *testing.T) {
	_, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)

	stats := buildWorkspace(t, coord)
	assert.Zero(t, stats.FilesIndexed)
	assert.Equal(t, 3, stats.FilesReused)
}

func TestBuildFull_ReindexesChangedFile(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)

	writeSource(t, root, "src/format.ts", formatSource+"\nexport function formatTime(d: Date): string {\n  return d.toTimeString();\n}\n")

	stats := buildWorkspace(t, coord)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 2, stats.FilesReused)

	symbols := coord.SearchSymbolByName("formatTime")
	assert.NotEmpty(t, symbols)
}

func TestBuildFull_BusyRejection(t *testing.T) {
	_, coord := newTestWorkspace(t)

	require.True(t, coord.building.TryAcquire())
	defer coord.building.Release()

	_, err := coord.BuildFull(context.Background())
	assert.ErrorIs(t, err, types.ErrBusy)
	assert.True(t, coord.Status().IsIndexing)
}

func TestBuildFull_Cancelled(t *testing.T) {
	_, coord := newTestWorkspace(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coord.BuildFull(ctx)
	assert.ErrorIs(t, err, types.ErrCancelled)

	// The lock is released: a fresh build succeeds.
	stats := buildWorkspace(t, coord)
	assert.Equal(t, 3, stats.FilesIndexed)
}

func TestBuildFull_BrokenFileIsFileLocal(t *testing.T) {
	root, coord := newTestWorkspace(t)
	// Non-UTF-8 garbage fails symbol extraction but still indexes as a
	// whole-file chunk; the build itself succeeds.
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "garbage.ts"), []byte{0xff, 0xfe, 0x20, 0x61}, 0644))

	stats := buildWorkspace(t, coord)
	assert.Equal(t, 4, stats.FilesIndexed)
	assert.Zero(t, stats.FilesFailed)

	status := coord.Status()
	assert.Equal(t, 4, status.DocumentCount)
}

func TestUpdateDocument_SwapsSymbolsAndVectors(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)

	oldSyms := coord.SearchSymbolByName("formatDate")
	require.NotEmpty(t, oldSyms)
	oldIDs := make([]string, 0, len(oldSyms))
	for _, sym := range oldSyms {
		oldIDs = append(oldIDs, sym.ID)
	}
	vectorsBefore := coord.Status().VectorCount

	// formatDate moves off line 1, so its old positional ID exists only
	// in the previous version of the file.
	writeSource(t, root, "src/format.ts", `// date helpers

export function formatDate(d: Date): string {
  return d.toISOString();
}

export function pad(n: number): string {
  return String(n).padStart(2, "0");
}
`)
	require.NoError(t, coord.UpdateDocument(context.Background(), "src/format.ts"))

	assert.NotEmpty(t, coord.SearchSymbolByName("pad"))

	// Stale symbol IDs from the old version resolve to nothing.
	snap := coord.snapshot.Load()
	for _, id := range oldIDs {
		_, ok := snap.Symbol(id)
		assert.False(t, ok, "stale symbol %s still resolves", id)
	}

	// Nor do they surface through graph traversal from a neighboring file.
	runSyms := coord.SearchSymbolByName("run")
	require.Len(t, runSyms, 1)
	related, err := coord.FindRelatedSymbols(runSyms[0].ID)
	require.NoError(t, err)
	for _, sym := range related {
		assert.NotContains(t, oldIDs, sym.ID)
	}

	// One chunk per function now, so the vector count grew by one.
	assert.Equal(t, vectorsBefore+1, coord.Status().VectorCount)
}

func TestUpdateDocument_DeletedFileRemoves(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "format.ts")))
	require.NoError(t, coord.UpdateDocument(context.Background(), "src/format.ts"))

	_, err := coord.GetSymbolsInFile("src/format.ts")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 2, coord.Status().DocumentCount)
}

func TestUpdateDocument_UnsupportedFile(t *testing.T) {
	root, coord := newTestWorkspace(t)
	writeSource(t, root, "notes.txt", "not source code")

	err := coord.UpdateDocument(context.Background(), "notes.txt")
	assert.Error(t, err)
}

func TestRemoveDocument_ScrubsVectors(t *testing.T) {
	_, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)

	snap := coord.snapshot.Load()
	doc := snap.Documents["src/math.ts"]
	require.NotNil(t, doc)
	chunkIDs := doc.ChunkIDs()
	require.NotEmpty(t, chunkIDs)

	require.NoError(t, coord.RemoveDocument(context.Background(), "src/math.ts"))

	after := coord.snapshot.Load()
	for _, id := range chunkIDs {
		_, ok := after.Vectors.Get(id)
		assert.False(t, ok, "vector for %s survived removal", id)
	}
	assert.Equal(t, 2, coord.Status().DocumentCount)
	assert.Empty(t, coord.SearchSymbolByName("add"))
}

func TestRemoveDocument_Unknown(t *testing.T) {
	_, coord := newTestWorkspace(t)
	err := coord.RemoveDocument(context.Background(), "src/never.ts")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)
	before := coord.Status()
	require.NoError(t, coord.Close())

	reopened, err := New(Config{Root: root})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	after := reopened.Status()
	assert.Equal(t, before.DocumentCount, after.DocumentCount)
	assert.Equal(t, before.SymbolCount, after.SymbolCount)
	assert.Equal(t, before.ChunkCount, after.ChunkCount)
	assert.Equal(t, before.VectorCount, after.VectorCount)
	assert.False(t, reopened.NeedsRebuild())

	// Chunk content is re-materialized from the files, so search still
	// returns snippets.
	results, err := reopened.SemanticSearch(context.Background(), "add two numbers", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.NotEmpty(t, results[0].Snippet)
}

func TestPersistence_StaleFileSchedulesRebuild(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)
	require.NoError(t, coord.Close())

	writeSource(t, root, "src/math.ts", mathSource+"\nexport function mul(a: number, b: number): number {\n  return a * b;\n}\n")

	reopened, err := New(Config{Root: root})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.True(t, reopened.NeedsRebuild())

	// The stored state still serves queries until the rebuild runs.
	assert.NotEmpty(t, reopened.SearchSymbolByName("add"))
}

func TestPersistence_DeletedFileDropped(t *testing.T) {
	root, coord := newTestWorkspace(t)
	buildWorkspace(t, coord)
	require.NoError(t, coord.Close())

	require.NoError(t, os.Remove(filepath.Join(root, "src", "format.ts")))

	reopened, err := New(Config{Root: root})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, 2, reopened.Status().DocumentCount)
	_, err = reopened.GetSymbolsInFile("src/format.ts")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
