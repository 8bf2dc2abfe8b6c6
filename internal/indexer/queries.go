package indexer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"codeatlas/internal/embedder"
	"codeatlas/pkg/types"
)

// SemanticSearch embeds the query text, runs nearest-neighbor search over
// the committed snapshot, and returns up to k results sorted by
// non-increasing score, each annotated with the query terms found in the
// chunk for explainability. k <= 0 yields an empty result set.
func (c *Coordinator) SemanticSearch(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if k <= 0 {
		return []types.SearchResult{}, nil
	}

	emb, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	snap := c.snapshot.Load()
	hits, err := snap.Vectors.Search(emb.Vector, k, nil)
	if err != nil {
		return nil, err
	}

	queryTerms := embedder.Tokenize(query)

	results := make([]types.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := snap.Chunk(hit.ID)
		if !ok {
			// Vector belongs to a chunk committed after this snapshot;
			// skip rather than return a dangling reference.
			continue
		}
		results = append(results, types.SearchResult{
			ChunkID:      chunk.ID,
			FilePath:     chunk.File,
			Rank:         len(results) + 1,
			Score:        hit.Score,
			MatchedTerms: matchedTerms(queryTerms, chunk.Content),
			Snippet:      snippet(chunk.Content),
			StartLine:    chunk.StartLine,
			EndLine:      chunk.EndLine,
			ChunkType:    chunk.Type,
		})
	}

	return results, nil
}

// SearchSymbolByName returns symbols whose name matches the query,
// case-insensitively. Exact matches rank before substring matches; ties
// order by file then line.
func (c *Coordinator) SearchSymbolByName(name string) []types.Symbol {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	snap := c.snapshot.Load()

	var exact, partial []types.Symbol
	for _, doc := range snap.Documents {
		for i := range doc.Symbols {
			symName := strings.ToLower(doc.Symbols[i].Name)
			switch {
			case symName == lower:
				exact = append(exact, doc.Symbols[i])
			case strings.Contains(symName, lower):
				partial = append(partial, doc.Symbols[i])
			}
		}
	}

	sortSymbols(exact)
	sortSymbols(partial)
	return append(exact, partial...)
}

// GetSymbolsInFile returns the symbols of one document in declaration
// order.
func (c *Coordinator) GetSymbolsInFile(path string) ([]types.Symbol, error) {
	snap := c.snapshot.Load()
	doc, ok := snap.Documents[c.relPath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", types.ErrNotFound, path)
	}

	out := append([]types.Symbol(nil), doc.Symbols...)
	sortSymbols(out)
	return out, nil
}

// FindRelatedSymbols walks the code graph from the symbol's file over both
// dependencies and dependents and returns the symbols declared in every
// reachable file. The traversal carries a visited set, so cyclic imports
// terminate.
func (c *Coordinator) FindRelatedSymbols(symbolID string) ([]types.Symbol, error) {
	snap := c.snapshot.Load()

	sym, ok := snap.Symbol(symbolID)
	if !ok {
		return nil, fmt.Errorf("%w: symbol %s", types.ErrNotFound, symbolID)
	}

	var related []types.Symbol
	for _, file := range snap.Graph.RelatedFiles(sym.File) {
		if doc, ok := snap.Documents[file]; ok {
			related = append(related, doc.Symbols...)
		}
	}

	sortSymbols(related)
	return related, nil
}

// FindSimilarCode locates the chunk enclosing the given location and
// returns its nearest neighbors by cosine similarity, excluding the chunk
// itself.
func (c *Coordinator) FindSimilarCode(path string, line, k int) (*types.SimilarCodeResult, error) {
	snap := c.snapshot.Load()

	doc, ok := snap.Documents[c.relPath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", types.ErrNotFound, path)
	}

	source := enclosingChunk(doc, line)
	if source == nil {
		return nil, fmt.Errorf("%w: no chunk at %s:%d", types.ErrNotFound, path, line)
	}

	vec, ok := snap.Vectors.Get(source.ID)
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s has no embedding", types.ErrNotFound, source.ID)
	}

	hits, err := snap.Vectors.Search(vec, k, map[string]bool{source.ID: true})
	if err != nil {
		return nil, err
	}

	sourceTerms := embedder.Tokenize(source.Content)

	result := &types.SimilarCodeResult{Source: *source}
	for _, hit := range hits {
		chunk, ok := snap.Chunk(hit.ID)
		if !ok {
			continue
		}
		result.Matches = append(result.Matches, types.SimilarChunk{
			Chunk:      *chunk,
			Similarity: hit.Score,
			Reason:     similarityReason(hit.Score, sourceTerms, chunk.Content),
		})
	}

	return result, nil
}

// enclosingChunk picks the narrowest chunk whose range contains the line.
func enclosingChunk(doc *types.Document, line int) *types.Chunk {
	var best *types.Chunk
	for i := range doc.Chunks {
		ch := &doc.Chunks[i]
		if !ch.ContainsLine(line) {
			continue
		}
		if best == nil || (ch.EndLine-ch.StartLine) < (best.EndLine-best.StartLine) {
			best = ch
		}
	}
	return best
}

// matchedTerms returns the unique query terms that also occur in the
// content, sorted.
func matchedTerms(queryTerms []string, content string) []string {
	contentTerms := make(map[string]bool)
	for _, t := range embedder.Tokenize(content) {
		contentTerms[t] = true
	}

	seen := make(map[string]bool)
	var matched []string
	for _, t := range queryTerms {
		if contentTerms[t] && !seen[t] {
			seen[t] = true
			matched = append(matched, t)
		}
	}
	sort.Strings(matched)
	return matched
}

// snippet cuts a short excerpt out of chunk content: the first few
// non-blank lines, capped in width.
func snippet(content string) string {
	const (
		maxLines = 3
		maxWidth = 200
	)

	var picked []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		picked = append(picked, strings.TrimRight(line, " \t"))
		if len(picked) == maxLines {
			break
		}
	}

	out := strings.Join(picked, "\n")
	if len(out) > maxWidth {
		out = out[:maxWidth] + "..."
	}
	return out
}

// similarityReason renders the human-readable explanation attached to a
// similar-code match.
func similarityReason(score float64, sourceTerms []string, content string) string {
	shared := matchedTerms(sourceTerms, content)
	if len(shared) > 5 {
		shared = shared[:5]
	}
	if len(shared) == 0 {
		return fmt.Sprintf("cosine similarity %.3f", score)
	}
	return fmt.Sprintf("cosine similarity %.3f; shares terms: %s", score, strings.Join(shared, ", "))
}

func sortSymbols(symbols []types.Symbol) {
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].File != symbols[j].File {
			return symbols[i].File < symbols[j].File
		}
		if symbols[i].StartLine != symbols[j].StartLine {
			return symbols[i].StartLine < symbols[j].StartLine
		}
		return symbols[i].Name < symbols[j].Name
	})
}
