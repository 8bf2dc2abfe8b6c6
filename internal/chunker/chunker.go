// Package chunker splits file content into semantic chunks, the unit of
// embedding and search. One chunk covers one top-level function, method or
// class; a file with no qualifying symbols yields a single whole-file chunk
// so that every file remains searchable.
package chunker

import (
	"strings"

	"codeatlas/pkg/types"
)

// Chunker creates semantic chunks from extracted symbols.
type Chunker struct{}

// New creates a new Chunker instance.
func New() *Chunker {
	return &Chunker{}
}

// ChunkFile produces the chunks for a file. file is the workspace-relative
// path, content the raw file text, symbols the extractor's output for it.
// Nested symbols whose declarations fall inside an outer chunk are recorded
// in that chunk's SymbolIDs rather than producing chunks of their own.
func (c *Chunker) ChunkFile(file string, content []byte, symbols []types.Symbol) []types.Chunk {
	lines := strings.Split(string(content), "\n")

	var chunks []types.Chunk
	covered := make([]bool, len(lines)+2)

	for i := range symbols {
		sym := &symbols[i]
		if !sym.IsChunkable() {
			continue
		}
		if sym.StartLine <= 0 || sym.StartLine > len(lines) {
			continue
		}
		// Skip symbols nested inside an already-chunked range, e.g.
		// methods of a class that produced a class chunk.
		if covered[sym.StartLine] {
			continue
		}

		chunk := c.chunkForSymbol(file, lines, sym, symbols)
		if chunk == nil {
			continue
		}

		for l := chunk.StartLine; l <= chunk.EndLine && l < len(covered); l++ {
			covered[l] = true
		}
		chunks = append(chunks, *chunk)
	}

	if len(chunks) == 0 {
		if whole := c.wholeFileChunk(file, lines, symbols); whole != nil {
			chunks = append(chunks, *whole)
		}
	}

	return chunks
}

// chunkForSymbol cuts the symbol's line range out of the file.
func (c *Chunker) chunkForSymbol(file string, lines []string, sym *types.Symbol, all []types.Symbol) *types.Chunk {
	startIdx := sym.StartLine - 1
	endIdx := sym.EndLine
	if endIdx > len(lines) {
		endIdx = len(lines)
	}
	if startIdx < 0 || startIdx >= endIdx {
		return nil
	}

	content := strings.Join(lines[startIdx:endIdx], "\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}

	chunk := &types.Chunk{
		ID:        types.ChunkID(file, sym.StartLine, endIdx),
		File:      file,
		Content:   content,
		StartLine: sym.StartLine,
		EndLine:   endIdx,
		Type:      chunkType(sym.Kind),
	}

	// Record every symbol declared inside the chunk's range.
	for i := range all {
		if all[i].StartLine >= chunk.StartLine && all[i].StartLine <= chunk.EndLine {
			chunk.SymbolIDs = append(chunk.SymbolIDs, all[i].ID)
		}
	}

	return chunk
}

// wholeFileChunk covers the entire file. Used when no symbol qualifies as a
// chunk boundary, including files the extractor could not scan.
func (c *Chunker) wholeFileChunk(file string, lines []string, symbols []types.Symbol) *types.Chunk {
	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}

	chunk := &types.Chunk{
		ID:        types.ChunkID(file, 1, len(lines)),
		File:      file,
		Content:   content,
		StartLine: 1,
		EndLine:   len(lines),
		Type:      types.ChunkFile,
	}
	for i := range symbols {
		chunk.SymbolIDs = append(chunk.SymbolIDs, symbols[i].ID)
	}
	return chunk
}

func chunkType(kind types.SymbolKind) types.ChunkType {
	switch kind {
	case types.KindClass:
		return types.ChunkClass
	case types.KindFunction, types.KindMethod:
		return types.ChunkFunction
	default:
		return types.ChunkBlock
	}
}
