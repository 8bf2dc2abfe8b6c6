package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvProvider     = "CODEATLAS_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOllamaURL    = "CODEATLAS_OLLAMA_URL"
	EnvOllamaModel  = "CODEATLAS_OLLAMA_MODEL"
)

// Config holds explicit embedder configuration.
type Config struct {
	Provider  string
	APIKey    string
	OllamaURL string
	Model     string
	CacheSize int
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaURL, cfg.Model, cache), nil
	case ProviderHash, "":
		return NewHashProvider(cache), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables. Priority:
// explicit CODEATLAS_EMBEDDING_PROVIDER, then an available OPENAI_API_KEY,
// then the deterministic hash provider.
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return New(Config{
			Provider:  provider,
			APIKey:    os.Getenv(EnvOpenAIAPIKey),
			OllamaURL: os.Getenv(EnvOllamaURL),
			Model:     os.Getenv(EnvOllamaModel),
		})
	}

	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		return NewOpenAIProvider(key, NewCache(DefaultCacheSize))
	}

	return NewHashProvider(NewCache(DefaultCacheSize)), nil
}
