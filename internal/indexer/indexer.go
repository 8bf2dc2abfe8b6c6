package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"codeatlas/internal/chunker"
	"codeatlas/internal/embedder"
	"codeatlas/internal/extractor"
	"codeatlas/internal/resolver"
	"codeatlas/internal/store"
	"codeatlas/internal/vectorindex"
	"codeatlas/internal/walker"
	"codeatlas/pkg/types"
)

const (
	// StateDirName is the per-workspace directory holding the two index
	// artifacts.
	StateDirName = ".codeatlas"

	// MetadataFileName is the SQLite document-metadata artifact.
	MetadataFileName = "index.db"

	// VectorFileName is the vector artifact.
	VectorFileName = "vectors.bin"

	// embedBatchSize bounds one embedding batch request.
	embedBatchSize = 50
)

// Config configures a Coordinator.
type Config struct {
	// Root is the workspace root to index.
	Root string

	// StateDir overrides the default <root>/.codeatlas artifact location.
	StateDir string

	// Embedder overrides the environment-configured embedding provider.
	Embedder embedder.Embedder

	// Extractor overrides the default lexical extractor.
	Extractor extractor.Extractor

	// Workers bounds parallel per-file parsing (default: NumCPU).
	Workers int
}

// Statistics describes one indexing run.
type Statistics struct {
	FilesIndexed     int
	FilesReused      int
	FilesFailed      int
	SymbolsExtracted int
	ChunksCreated    int
	Duration         time.Duration
	ErrorMessages    []string
}

// Coordinator owns the index lifecycle: full builds, incremental updates,
// removal, persistence, and the public query API. All index state lives in
// the coordinator's current Snapshot; there is no ambient global state.
type Coordinator struct {
	root     string
	stateDir string

	store     *store.Store
	embedder  embedder.Embedder
	extractor extractor.Extractor
	resolver  *resolver.Resolver
	chunker   *chunker.Chunker
	workers   int

	snapshot atomic.Pointer[Snapshot]
	building buildLock

	// mu is the single merge point: one writer at a time mutates the
	// committed state.
	mu sync.Mutex

	rebuildNeeded atomic.Bool
}

// New creates a Coordinator for the workspace rooted at cfg.Root, opens the
// persistence artifacts, and loads any previously committed state. A
// corrupt or missing persisted index is not fatal: the coordinator starts
// empty and schedules a full rebuild.
func New(cfg Config) (*Coordinator, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", cfg.Root)
	}

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = filepath.Join(root, StateDirName)
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	emb := cfg.Embedder
	if emb == nil {
		emb, err = embedder.NewFromEnv()
		if err != nil {
			return nil, fmt.Errorf("initialize embedder: %w", err)
		}
	}

	ext := cfg.Extractor
	if ext == nil {
		ext = extractor.New()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	st, err := store.Open(filepath.Join(stateDir, MetadataFileName))
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		root:      root,
		stateDir:  stateDir,
		store:     st,
		embedder:  emb,
		extractor: ext,
		resolver:  resolver.New(root),
		chunker:   chunker.New(),
		workers:   workers,
	}
	c.snapshot.Store(newSnapshot(map[string]*types.Document{}, vectorindex.New(emb.Dimension())))

	c.loadPersisted()
	return c, nil
}

// Close releases the coordinator's resources.
func (c *Coordinator) Close() error {
	if err := c.embedder.Close(); err != nil {
		return err
	}
	return c.store.Close()
}

// NeedsRebuild reports whether persisted state was unusable or stale at
// startup and a full build should run.
func (c *Coordinator) NeedsRebuild() bool {
	return c.rebuildNeeded.Load()
}

// Status reports the engine's lifecycle state against the committed
// snapshot.
func (c *Coordinator) Status() types.Status {
	snap := c.snapshot.Load()

	symbols := 0
	chunks := 0
	for _, doc := range snap.Documents {
		symbols += len(doc.Symbols)
		chunks += len(doc.Chunks)
	}

	return types.Status{
		IsIndexing:    c.building.Held(),
		DocumentCount: len(snap.Documents),
		ChunkCount:    chunks,
		SymbolCount:   symbols,
		VectorCount:   snap.Vectors.Len(),
	}
}

// loadPersisted restores the last committed state from the two on-disk
// artifacts and validates it against the workspace. Documents whose files
// are gone are dropped; documents whose files changed are kept but marked
// stale so the next full scan re-indexes them.
func (c *Coordinator) loadPersisted() {
	docs, err := c.store.LoadAll(context.Background())
	if err != nil {
		log.Printf("indexer: persisted metadata unusable, scheduling rebuild: %v", err)
		c.rebuildNeeded.Store(true)
		return
	}
	if len(docs) == 0 {
		c.rebuildNeeded.Store(true)
		return
	}

	vectors := vectorindex.New(c.embedder.Dimension())
	vecPath := filepath.Join(c.stateDir, VectorFileName)
	if err := vectors.Load(vecPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("indexer: vector file unusable, scheduling rebuild: %v", err)
		}
		c.rebuildNeeded.Store(true)
		vectors = vectorindex.New(c.embedder.Dimension())
	}
	if vectors.Dimension() != c.embedder.Dimension() {
		log.Printf("indexer: vector dimension %d does not match provider dimension %d, scheduling rebuild",
			vectors.Dimension(), c.embedder.Dimension())
		c.rebuildNeeded.Store(true)
		vectors = vectorindex.New(c.embedder.Dimension())
	}

	byID := make(map[string]*types.Document, len(docs))
	for _, doc := range docs {
		abs := filepath.Join(c.root, filepath.FromSlash(doc.ID))
		content, err := os.ReadFile(abs)
		if err != nil {
			// File gone since last run; drop its document and vectors.
			vectors.Delete(doc.ChunkIDs())
			continue
		}

		if hashContent(content) != doc.ContentHash {
			// Stale: keep serving the stored state, re-index on the
			// next full scan.
			c.rebuildNeeded.Store(true)
		}

		// Chunk content is not persisted; re-materialize it from the
		// file using the stored line ranges.
		materializeChunks(doc, content)
		byID[doc.ID] = doc
	}

	c.snapshot.Store(newSnapshot(byID, vectors))
}

// BuildFull discovers all workspace files, indexes them, and commits the
// result as a new snapshot. It is idempotent and always replaces prior
// state on success; unchanged files reuse their previous documents and
// vectors. A second build requested while one is running fails with
// ErrBusy. Cancellation between files retains already-processed documents.
func (c *Coordinator) BuildFull(ctx context.Context) (*Statistics, error) {
	if !c.building.TryAcquire() {
		return nil, types.ErrBusy
	}
	defer c.building.Release()

	start := time.Now()
	stats := &Statistics{}
	prev := c.snapshot.Load()

	files := walker.Collect(c.root)

	results := make([]*fileResult, len(files))
	var (
		resultMu  sync.Mutex
		cancelled bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, fi := range files {
		// Cancellation is checked between files: stop spawning, keep
		// what is already processed.
		if gctx.Err() != nil {
			cancelled = true
			break
		}

		g.Go(func() error {
			res, err := c.processFile(gctx, fi, prev)
			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				stats.FilesFailed++
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", fi.RelPath, err))
				return nil // file-local failure never aborts the build
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	if ctx.Err() != nil {
		cancelled = true
	}

	vectors := vectorindex.New(c.embedder.Dimension())
	byID := make(map[string]*types.Document, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		byID[res.doc.ID] = res.doc
		if err := vectors.Add(res.vectorIDs, res.vectors); err != nil {
			return nil, err
		}
		if res.reused {
			stats.FilesReused++
		} else {
			stats.FilesIndexed++
		}
		stats.SymbolsExtracted += len(res.doc.Symbols)
		stats.ChunksCreated += len(res.doc.Chunks)
	}

	c.mu.Lock()
	c.snapshot.Store(newSnapshot(byID, vectors))
	persistErr := c.persistAll(byID, vectors)
	c.mu.Unlock()

	if !cancelled {
		c.rebuildNeeded.Store(false)
	}

	stats.Duration = time.Since(start)

	if cancelled {
		return stats, fmt.Errorf("%w: %d documents retained", types.ErrCancelled, len(byID))
	}
	if persistErr != nil {
		return stats, persistErr
	}
	return stats, nil
}

// UpdateDocument re-indexes exactly one file and atomically swaps its
// document, symbols, chunks and vectors. Intended for file-save events. A
// path that no longer exists is treated as a removal.
func (c *Coordinator) UpdateDocument(ctx context.Context, path string) error {
	fi, err := walker.Stat(c.root, c.absPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.RemoveDocument(ctx, path)
		}
		return fmt.Errorf("%w: %s: %v", types.ErrFileRead, path, err)
	}
	if fi.Language == "" {
		return fmt.Errorf("unsupported file type: %s", path)
	}

	res, err := c.processFile(ctx, fi, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot.Load()

	var oldChunkIDs []string
	if old, ok := snap.Documents[res.doc.ID]; ok {
		oldChunkIDs = old.ChunkIDs()
	}

	// One critical section in the vector index: no search observes the
	// old vectors removed without the new ones present.
	if err := snap.Vectors.Replace(oldChunkIDs, res.vectorIDs, res.vectors); err != nil {
		return err
	}

	docs := cloneDocuments(snap.Documents)
	docs[res.doc.ID] = res.doc
	c.snapshot.Store(newSnapshot(docs, snap.Vectors))

	if err := c.store.UpsertDocument(ctx, res.doc); err != nil {
		return err
	}
	return snap.Vectors.Save(filepath.Join(c.stateDir, VectorFileName))
}

// RemoveDocument deletes a document's symbols, chunks and all associated
// vectors. Afterwards no vector in the index references any of the
// document's former chunks.
func (c *Coordinator) RemoveDocument(ctx context.Context, path string) error {
	rel := c.relPath(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot.Load()
	doc, ok := snap.Documents[rel]
	if !ok {
		return fmt.Errorf("%w: document %s", types.ErrNotFound, rel)
	}

	snap.Vectors.Delete(doc.ChunkIDs())

	docs := cloneDocuments(snap.Documents)
	delete(docs, rel)
	c.snapshot.Store(newSnapshot(docs, snap.Vectors))

	if err := c.store.DeleteDocument(ctx, rel); err != nil {
		return err
	}
	return snap.Vectors.Save(filepath.Join(c.stateDir, VectorFileName))
}

// fileResult is the per-file output of the parallel parse phase. No shared
// state is touched until results are merged under the coordinator's lock.
type fileResult struct {
	doc       *types.Document
	vectorIDs []string
	vectors   [][]float32
	reused    bool
}

// processFile runs the full per-file pipeline: read, extract, resolve,
// chunk, embed. When prev is non-nil and holds an identical document
// (matching content hash) with a full vector set, the previous results are
// reused and no embedding work happens.
func (c *Coordinator) processFile(ctx context.Context, fi walker.FileInfo, prev *Snapshot) (*fileResult, error) {
	content, err := os.ReadFile(fi.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFileRead, err)
	}

	hash := hashContent(content)

	if prev != nil {
		if old, ok := prev.Documents[fi.RelPath]; ok && old.ContentHash == hash {
			if res, ok := reuseDocument(old, prev.Vectors); ok {
				return res, nil
			}
		}
	}

	info, err := os.Stat(fi.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFileRead, err)
	}

	symbols, err := c.extractor.Extract(fi.RelPath, fi.Language, content)
	if err != nil {
		// Parse failures are file-local: the file is still indexed as a
		// single whole-file chunk with no symbols.
		log.Printf("indexer: %s: %v", fi.RelPath, err)
		symbols = nil
	}

	var imports, externals []string
	for _, imp := range c.resolver.Resolve(fi.RelPath, content) {
		switch {
		case imp.External:
			externals = append(externals, imp.Specifier)
		case imp.Resolved != "":
			imports = append(imports, imp.Resolved)
		}
	}
	sort.Strings(imports)

	chunks := c.chunker.ChunkFile(fi.RelPath, content, symbols)

	doc := &types.Document{
		ID:          fi.RelPath,
		Path:        fi.RelPath,
		Language:    fi.Language,
		ContentHash: hash,
		ModTime:     info.ModTime(),
		Symbols:     symbols,
		Chunks:      chunks,
		Imports:     imports,
		Externals:   externals,
		IndexedAt:   time.Now(),
	}

	ids, vecs, err := c.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	return &fileResult{doc: doc, vectorIDs: ids, vectors: vecs}, nil
}

// reuseDocument pulls an unchanged document's vectors out of the previous
// snapshot. Reuse requires every chunk to still have a vector; otherwise
// the file is re-embedded from scratch.
func reuseDocument(old *types.Document, vectors *vectorindex.Index) (*fileResult, bool) {
	ids := old.ChunkIDs()
	vecs := make([][]float32, len(ids))
	for i, id := range ids {
		vec, ok := vectors.Get(id)
		if !ok {
			return nil, false
		}
		vecs[i] = vec
	}
	return &fileResult{doc: old, vectorIDs: ids, vectors: vecs, reused: true}, true
}

// embedChunks embeds chunk contents in bounded batches.
func (c *Coordinator) embedChunks(ctx context.Context, chunks []types.Chunk) ([]string, [][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ID
		texts[i] = chunks[i].Content
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(texts); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		embs, err := c.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, nil, err
		}
		for _, emb := range embs {
			vectors = append(vectors, emb.Vector)
		}
	}

	return ids, vectors, nil
}

// persistAll writes both artifacts. Callers hold the merge lock, so saves
// are serialized.
func (c *Coordinator) persistAll(docs map[string]*types.Document, vectors *vectorindex.Index) error {
	list := make([]*types.Document, 0, len(docs))
	for _, doc := range docs {
		list = append(list, doc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	if err := c.store.SaveAll(context.Background(), list); err != nil {
		return err
	}
	return vectors.Save(filepath.Join(c.stateDir, VectorFileName))
}

// relPath normalizes an absolute or workspace-relative path to the
// slash-separated document ID form.
func (c *Coordinator) relPath(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(c.root, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

// absPath resolves a possibly workspace-relative path to absolute.
func (c *Coordinator) absPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.root, filepath.FromSlash(path))
}

func hashContent(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// materializeChunks restores chunk content from file text using the
// persisted line ranges.
func materializeChunks(doc *types.Document, content []byte) {
	lines := strings.Split(string(content), "\n")
	for i := range doc.Chunks {
		ch := &doc.Chunks[i]
		startIdx := ch.StartLine - 1
		endIdx := ch.EndLine
		if startIdx < 0 || startIdx >= len(lines) {
			continue
		}
		if endIdx > len(lines) {
			endIdx = len(lines)
		}
		ch.Content = strings.Join(lines[startIdx:endIdx], "\n")
	}
}
