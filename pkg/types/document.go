package types

import (
	"errors"
	"time"
)

// Document is the per-file aggregate produced by indexing: the file's
// identity, modification marker, symbols and chunks. It is the unit of
// incremental update: replacing a document atomically replaces all of its
// symbols, chunks and vectors.
type Document struct {
	// ID is the workspace-relative file path.
	ID   string
	Path string

	Language string

	// ContentHash is the hex-encoded SHA-256 of the file content at index
	// time. Together with ModTime it is the staleness marker: a document
	// whose file no longer hashes to this value is re-indexed on the next
	// full scan.
	ContentHash string
	ModTime     time.Time

	Symbols []Symbol
	Chunks  []Chunk

	// Imports holds the workspace-relative paths of files this document
	// imports, after resolution. Only in-workspace targets appear here.
	Imports []string

	// Externals holds package specifiers that did not resolve to a
	// workspace file (third-party or runtime modules).
	Externals []string

	IndexedAt time.Time
}

// Validate performs basic validation of the document aggregate.
func (d *Document) Validate() error {
	if d.ID == "" {
		return errors.New("document ID is required")
	}

	if d.Path == "" {
		return errors.New("document path is required")
	}

	if d.ContentHash == "" {
		return errors.New("document content hash is required")
	}

	for i := range d.Symbols {
		if err := d.Symbols[i].Validate(); err != nil {
			return err
		}
	}

	for i := range d.Chunks {
		if err := d.Chunks[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ChunkIDs returns the IDs of all chunks in the document.
func (d *Document) ChunkIDs() []string {
	ids := make([]string, len(d.Chunks))
	for i := range d.Chunks {
		ids[i] = d.Chunks[i].ID
	}
	return ids
}

// SymbolIDs returns the IDs of all symbols in the document.
func (d *Document) SymbolIDs() []string {
	ids := make([]string, len(d.Symbols))
	for i := range d.Symbols {
		ids[i] = d.Symbols[i].ID
	}
	return ids
}
