// Package indexer coordinates the indexing pipeline and owns the index
// lifecycle.
//
// # Pipeline
//
// A full build flows one direction:
//
//	walker -> extractor + resolver -> chunker -> embedder -> vector index
//
// Per-file work (read, extract, resolve, chunk, embed) is embarrassingly
// parallel and runs on an errgroup bounded by the worker count; nothing
// shared is touched until results merge under the coordinator's lock.
//
// # Snapshots
//
// Queries never see a half-built index. The coordinator publishes immutable
// Snapshot values through an atomic pointer: a rebuild prepares its entire
// document set, graph and vector index off to the side and swaps them in on
// completion. Incremental updates clone the document map, replace one
// document, and republish. Cancellation between files commits whatever was
// processed: partial progress is retained, never rolled back.
//
// # Persistence
//
// Two artifacts live under <root>/.codeatlas: index.db (SQLite document
// metadata) and vectors.bin (chunk embeddings). Both are rewritten after a
// successful build and incrementally on document updates. Corrupt or
// missing artifacts at startup leave the engine empty with a rebuild
// scheduled; they never fail construction.
package indexer
