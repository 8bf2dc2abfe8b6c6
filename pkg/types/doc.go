// Package types provides the shared domain types of the codeatlas engine.
//
// The engine's data model is built from four aggregates:
//
// Symbol is a named declaration (function, class, interface, constant, type)
// located by lightweight lexical scanning:
//
//	sym := types.Symbol{
//	    ID:        types.SymbolID("src/util.ts", "add", 10),
//	    Name:      "add",
//	    Kind:      types.KindFunction,
//	    File:      "src/util.ts",
//	    StartLine: 10,
//	    EndLine:   14,
//	}
//
// Chunk is a contiguous unit of source text, the atomic unit of semantic
// search. One chunk covers one top-level function or class; a file with no
// qualifying symbols gets a single whole-file chunk.
//
// Document is the per-file aggregate of symbols and chunks plus the
// modification marker used for staleness detection. Replacing a document
// atomically replaces everything derived from its file.
//
// SearchResult and SimilarCodeResult carry query responses, annotated with
// matched lexical terms for explainability.
//
// IDs are strings derived from location: symbol IDs from (file, name, start
// line), chunk IDs from (file, line range), document IDs from the
// workspace-relative path. Derived IDs keep incremental replacement cheap:
// an unchanged file reproduces identical IDs on re-index.
package types
