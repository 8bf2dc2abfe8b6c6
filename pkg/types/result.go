package types

// SearchResult is a single semantic search hit with relevance information
// and the lexical explanation of why it matched.
type SearchResult struct {
	ChunkID  string
	FilePath string

	// Rank is the 1-based position in the result set.
	Rank int

	// Score is the cosine similarity between the query embedding and the
	// chunk embedding, in [-1, 1].
	Score float64

	// MatchedTerms lists query terms that also occur in the chunk content,
	// included for explainability.
	MatchedTerms []string

	// Snippet is a short excerpt of the chunk content.
	Snippet string

	StartLine int
	EndLine   int

	ChunkType ChunkType
}

// SimilarChunk is one nearest-neighbor match for a source chunk.
type SimilarChunk struct {
	Chunk      Chunk
	Similarity float64

	// Reason is a human-readable explanation of the match.
	Reason string
}

// SimilarCodeResult is the response to a find-similar-code query: the chunk
// enclosing the requested location plus its nearest neighbors, excluding
// itself.
type SimilarCodeResult struct {
	Source  Chunk
	Matches []SimilarChunk
}

// Status describes the engine's current lifecycle state.
type Status struct {
	IsIndexing    bool
	DocumentCount int
	ChunkCount    int
	VectorCount   int
	SymbolCount   int
}
