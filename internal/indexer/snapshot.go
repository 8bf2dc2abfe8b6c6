package indexer

import (
	"time"

	"codeatlas/internal/graph"
	"codeatlas/internal/vectorindex"
	"codeatlas/pkg/types"
)

// Snapshot is one committed, immutable view of the index. Queries always
// read the last committed snapshot; builds prepare a new snapshot off to
// the side and swap it in atomically only on completion, so a half-built
// graph is never visible.
type Snapshot struct {
	// Documents maps document ID (workspace-relative path) to the
	// indexed aggregate.
	Documents map[string]*types.Document

	// Graph is the code graph derived from Documents.
	Graph *graph.Graph

	// Vectors is the live vector index. It is shared between consecutive
	// snapshots during incremental updates; its own locking makes each
	// replace atomic for concurrent searches.
	Vectors *vectorindex.Index

	BuiltAt time.Time

	chunksByID  map[string]*types.Chunk
	symbolsByID map[string]*types.Symbol
}

// newSnapshot derives the graph and lookup tables from a document set.
// Edges are rebuilt from each document's resolved imports; targets missing
// from the document set are omitted, never inserted as placeholders.
func newSnapshot(docs map[string]*types.Document, vectors *vectorindex.Index) *Snapshot {
	g := graph.New()
	chunks := make(map[string]*types.Chunk)
	symbols := make(map[string]*types.Symbol)

	for _, doc := range docs {
		g.AddFile(doc.ID)
		for i := range doc.Symbols {
			g.AddSymbol(doc.Symbols[i])
			symbols[doc.Symbols[i].ID] = &doc.Symbols[i]
		}
		for i := range doc.Chunks {
			chunks[doc.Chunks[i].ID] = &doc.Chunks[i]
		}
	}

	for _, doc := range docs {
		for _, target := range doc.Imports {
			g.AddEdge(doc.ID, target)
		}
	}

	return &Snapshot{
		Documents:   docs,
		Graph:       g,
		Vectors:     vectors,
		BuiltAt:     time.Now(),
		chunksByID:  chunks,
		symbolsByID: symbols,
	}
}

// cloneDocuments shallow-copies the document map for copy-on-write
// mutation.
func cloneDocuments(docs map[string]*types.Document) map[string]*types.Document {
	out := make(map[string]*types.Document, len(docs)+1)
	for k, v := range docs {
		out[k] = v
	}
	return out
}

// Chunk looks up a chunk by ID in the snapshot.
func (s *Snapshot) Chunk(id string) (*types.Chunk, bool) {
	c, ok := s.chunksByID[id]
	return c, ok
}

// Symbol looks up a symbol by ID in the snapshot.
func (s *Snapshot) Symbol(id string) (*types.Symbol, bool) {
	sym, ok := s.symbolsByID[id]
	return sym, ok
}
