package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ChunkType represents the kind of source unit a chunk covers.
type ChunkType string

const (
	ChunkFunction ChunkType = "function"
	ChunkClass    ChunkType = "class"
	ChunkBlock    ChunkType = "block"
	ChunkFile     ChunkType = "file"
)

// Chunk is a contiguous unit of source text, the atomic unit of semantic
// search. Typically one chunk covers one top-level function or class; files
// with no qualifying symbols get a single whole-file chunk so every file
// remains searchable.
type Chunk struct {
	// ID is derived from the owning file and line range. See ChunkID.
	ID string

	// File is the workspace-relative path of the owning file.
	File string

	Content string

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int
	EndLine   int

	// SymbolIDs lists the symbols whose declarations fall inside this
	// chunk's line range.
	SymbolIDs []string

	Type ChunkType
}

// ChunkID derives the canonical chunk identifier from its file and line range.
func ChunkID(file string, startLine, endLine int) string {
	return fmt.Sprintf("%s#%d-%d", file, startLine, endLine)
}

// ContentHash returns the hex-encoded SHA-256 hash of the chunk content,
// used as the embedding cache key.
func (c *Chunk) ContentHash() string {
	h := sha256.Sum256([]byte(c.Content))
	return hex.EncodeToString(h[:])
}

// ValidateType checks if the chunk type is one of the known types.
func (c *Chunk) ValidateType() error {
	switch c.Type {
	case ChunkFunction, ChunkClass, ChunkBlock, ChunkFile:
		return nil
	default:
		return errors.New("invalid chunk type")
	}
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}

	if c.File == "" {
		return errors.New("chunk file is required")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	if err := c.ValidateType(); err != nil {
		return err
	}

	return nil
}

// ContainsLine reports whether the given 1-based line falls inside the
// chunk's line range.
func (c *Chunk) ContainsLine(line int) bool {
	return line >= c.StartLine && line <= c.EndLine
}
