// Package vectorindex stores chunk embeddings and answers nearest-neighbor
// queries by cosine similarity. Search is a linear scan over all stored
// vectors, which holds up fine at single-workspace scale; the contract
// leaves room for an approximate index to replace the internals later.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs
	// from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptFile is returned when the persisted index cannot be
	// decoded.
	ErrCorruptFile = errors.New("vector file corrupt")
)

// Result is one search hit: a chunk ID with its cosine similarity to the
// query, in descending score order.
type Result struct {
	ID    string
	Score float64
}

// Index is an in-memory vector store keyed by chunk ID. Invariant: exactly
// one record per embedded chunk, all records the same dimension. All
// methods are safe for concurrent use; mutations take the write lock, so a
// Replace is atomic from the point of view of concurrent searches.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string][]float32

	// saveMu serializes Save calls: single-writer discipline for the
	// on-disk artifact.
	saveMu sync.Mutex
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) *Index {
	return &Index{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// Dimension returns the index's fixed vector dimension.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Add inserts or overwrites records. ids and vectors must be parallel
// slices and every vector must match the index dimension.
func (ix *Index) Add(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%d ids for %d vectors", len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: %s has dimension %d, want %d", ErrDimensionMismatch, ids[i], len(v), ix.dim)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, id := range ids {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		ix.vectors[id] = vec
	}
	return nil
}

// Get returns a copy of the stored vector for id.
func (ix *Index) Get(id string) ([]float32, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.vectors[id]
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Delete removes records. Unknown IDs are ignored.
func (ix *Index) Delete(ids []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, id := range ids {
		delete(ix.vectors, id)
	}
}

// Replace atomically deletes one set of records and inserts another, so no
// concurrent search observes the intermediate state. Used for incremental
// document updates.
func (ix *Index) Replace(deleteIDs []string, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%d ids for %d vectors", len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: %s has dimension %d, want %d", ErrDimensionMismatch, ids[i], len(v), ix.dim)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, id := range deleteIDs {
		delete(ix.vectors, id)
	}
	for i, id := range ids {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		ix.vectors[id] = vec
	}
	return nil
}

// Clear removes every record.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = make(map[string][]float32)
}

// Search returns up to k records ranked by descending cosine similarity to
// query. k <= 0 returns an empty slice. An optional exclude set drops
// records from the ranking (used by find-similar-code to omit the source
// chunk).
func (ix *Index) Search(query []float32, k int, exclude map[string]bool) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, want %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return []Result{}, nil
	}

	ix.mu.RLock()
	candidates := make([]Result, 0, len(ix.vectors))
	for id, vec := range ix.vectors {
		if exclude[id] {
			continue
		}
		candidates = append(candidates, Result{ID: id, Score: CosineSimilarity(query, vec)})
	}
	ix.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||), defined as 0 when
// either norm is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
