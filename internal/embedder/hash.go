package embedder

import (
	"context"
	"crypto/sha256"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashDimension is the fixed dimension of the hash provider's vectors.
const HashDimension = 256

// ProviderHash is the name of the deterministic hash provider.
const ProviderHash = "hash"

// HashProvider is the default, dependency-free Embedder. It computes a
// deterministic pseudo-embedding: token-frequency features hashed into
// fixed buckets, with a low-amplitude content-hash component so even texts
// sharing no tokens get distinct vectors. Texts with overlapping
// identifiers land in overlapping buckets, which raises their cosine
// similarity. That is enough signal for lexical-semantic search over one
// workspace, and a real model can replace it behind the Embedder contract.
type HashProvider struct {
	cache *Cache
}

// NewHashProvider creates the deterministic hash embedder.
func NewHashProvider(cache *Cache) *HashProvider {
	return &HashProvider{cache: cache}
}

// Embed generates the pseudo-embedding for text.
func (h *HashProvider) Embed(ctx context.Context, text string) (*Embedding, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if h.cache != nil {
		if emb, ok := h.cache.Get(hash); ok {
			return emb, nil
		}
	}

	emb := &Embedding{
		Vector:    hashVector(text),
		Dimension: HashDimension,
		Provider:  ProviderHash,
		Model:     "token-hash-v1",
		Hash:      hash,
	}

	if h.cache != nil {
		h.cache.Set(hash, emb)
	}
	return emb, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (h *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}

	embeddings := make([]*Embedding, len(texts))
	for i, text := range texts {
		emb, err := h.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

func (h *HashProvider) Dimension() int   { return HashDimension }
func (h *HashProvider) Provider() string { return ProviderHash }
func (h *HashProvider) Close() error     { return nil }

// seedAmplitude scales the content-hash component well below the token
// features so lexical overlap dominates similarity.
const seedAmplitude = 0.05

var tokenPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|\d+`)

// camelBoundary splits camelCase identifiers so "semanticSearch" also
// contributes "semantic" and "search".
var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// hashVector builds the pseudo-embedding: each token adds weight to the
// bucket its FNV hash selects, the SHA-256 of the whole text adds a small
// dense component, and the result is normalized to unit length.
func hashVector(text string) []float32 {
	vec := make([]float64, HashDimension)

	for _, tok := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		vec[f.Sum32()%HashDimension]++
	}

	seed := sha256.Sum256([]byte(text))
	for i := 0; i < HashDimension; i++ {
		vec[i] += seedAmplitude * (float64(seed[i%len(seed)])/255.0 - 0.5)
	}

	return normalize(vec)
}

// tokenize lowercases identifier-like tokens and splits camelCase and
// snake_case compounds into their parts.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(raw)*2)

	for _, tok := range raw {
		split := camelBoundary.ReplaceAllString(tok, "$1 $2")
		split = strings.ReplaceAll(split, "_", " ")
		for _, part := range strings.Fields(split) {
			part = strings.ToLower(part)
			if len(part) > 1 {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// Tokenize exposes the token stream used for embedding; search reuses it to
// report matched terms.
func Tokenize(text string) []string {
	return tokenize(text)
}

func normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}

	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
