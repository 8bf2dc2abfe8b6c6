// Package store persists document metadata in a SQLite database: documents,
// symbols, chunk metadata (line ranges and symbol membership, no raw
// content) and import relationships. Together with the vector file it forms
// the two on-disk artifacts of a workspace index.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"codeatlas/pkg/types"
)

// Store is the SQLite-backed document-metadata store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the metadata database at dbPath and applies
// pending migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL for better concurrency; SQLite prefers a single writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAll replaces the entire persisted document set in one transaction.
func (s *Store) SaveAll(ctx context.Context, docs []*types.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{"externals", "imports", "chunks", "symbols", "documents"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, doc := range docs {
		if err := insertDocument(ctx, tx, doc); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpsertDocument atomically replaces one document and everything derived
// from it.
func (s *Store) UpsertDocument(ctx context.Context, doc *types.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteDocument(ctx, tx, doc.ID); err != nil {
		return err
	}
	if err := insertDocument(ctx, tx, doc); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its dependent rows.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteDocument(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAll reads every persisted document. Chunk content is not stored;
// callers re-materialize it from the file using the chunk line ranges after
// validating the content hash.
func (s *Store) LoadAll(ctx context.Context) ([]*types.Document, error) {
	docs, err := s.loadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	byID := make(map[string]*types.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	if err := s.loadSymbols(ctx, byID); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}
	if err := s.loadChunks(ctx, byID); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}
	if err := s.loadImports(ctx, byID); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// execer is implemented by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertDocument(ctx context.Context, tx execer, doc *types.Document) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, path, language, content_hash, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Path, doc.Language, doc.ContentHash, doc.ModTime.UTC(), doc.IndexedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}

	for i := range doc.Symbols {
		sym := &doc.Symbols[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (id, document_id, name, kind, start_line, end_line, visibility)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sym.ID, doc.ID, sym.Name, string(sym.Kind), sym.StartLine, sym.EndLine, string(sym.Visibility))
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.ID, err)
		}
	}

	for i := range doc.Chunks {
		ch := &doc.Chunks[i]
		symbolIDs, err := json.Marshal(ch.SymbolIDs)
		if err != nil {
			return fmt.Errorf("failed to encode symbol IDs for %s: %w", ch.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, chunk_type, start_line, end_line, symbol_ids)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ch.ID, doc.ID, string(ch.Type), ch.StartLine, ch.EndLine, string(symbolIDs))
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", ch.ID, err)
		}
	}

	for _, target := range doc.Imports {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO imports (document_id, target) VALUES (?, ?)`,
			doc.ID, target); err != nil {
			return fmt.Errorf("failed to insert import: %w", err)
		}
	}

	for _, spec := range doc.Externals {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO externals (document_id, specifier) VALUES (?, ?)`,
			doc.ID, spec); err != nil {
			return fmt.Errorf("failed to insert external: %w", err)
		}
	}

	return nil
}

func deleteDocument(ctx context.Context, tx execer, id string) error {
	// Dependent tables are cleaned explicitly rather than relying on
	// cascade behavior across both drivers.
	for _, table := range []string{"externals", "imports", "chunks", "symbols"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE document_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

func (s *Store) loadDocuments(ctx context.Context) ([]*types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, language, content_hash, mod_time, indexed_at FROM documents")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*types.Document
	for rows.Next() {
		var doc types.Document
		var modTime, indexedAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Language, &doc.ContentHash, &modTime, &indexedAt); err != nil {
			return nil, err
		}
		doc.ModTime = modTime
		doc.IndexedAt = indexedAt
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *Store) loadSymbols(ctx context.Context, byID map[string]*types.Document) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, name, kind, start_line, end_line, visibility FROM symbols ORDER BY document_id, start_line")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sym types.Symbol
		var docID, kind, visibility string
		if err := rows.Scan(&sym.ID, &docID, &sym.Name, &kind, &sym.StartLine, &sym.EndLine, &visibility); err != nil {
			return err
		}
		doc, ok := byID[docID]
		if !ok {
			continue
		}
		sym.Kind = types.SymbolKind(kind)
		sym.Visibility = types.Visibility(visibility)
		sym.File = docID
		doc.Symbols = append(doc.Symbols, sym)
	}
	return rows.Err()
}

func (s *Store) loadChunks(ctx context.Context, byID map[string]*types.Document) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, chunk_type, start_line, end_line, symbol_ids FROM chunks ORDER BY document_id, start_line")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ch types.Chunk
		var docID, chunkType, symbolIDs string
		if err := rows.Scan(&ch.ID, &docID, &chunkType, &ch.StartLine, &ch.EndLine, &symbolIDs); err != nil {
			return err
		}
		doc, ok := byID[docID]
		if !ok {
			continue
		}
		ch.Type = types.ChunkType(chunkType)
		ch.File = docID
		if err := json.Unmarshal([]byte(symbolIDs), &ch.SymbolIDs); err != nil {
			return fmt.Errorf("failed to decode symbol IDs for %s: %w", ch.ID, err)
		}
		doc.Chunks = append(doc.Chunks, ch)
	}
	return rows.Err()
}

func (s *Store) loadImports(ctx context.Context, byID map[string]*types.Document) error {
	rows, err := s.db.QueryContext(ctx, "SELECT document_id, target FROM imports ORDER BY document_id, target")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var docID, target string
		if err := rows.Scan(&docID, &target); err != nil {
			return err
		}
		if doc, ok := byID[docID]; ok {
			doc.Imports = append(doc.Imports, target)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	extRows, err := s.db.QueryContext(ctx, "SELECT document_id, specifier FROM externals ORDER BY document_id, specifier")
	if err != nil {
		return err
	}
	defer func() { _ = extRows.Close() }()

	for extRows.Next() {
		var docID, spec string
		if err := extRows.Scan(&docID, &spec); err != nil {
			return err
		}
		if doc, ok := byID[docID]; ok {
			doc.Externals = append(doc.Externals, spec)
		}
	}
	return extRows.Err()
}
