package internal

import (
	"context"
	"fmt"
	"math"
	"os"
)

const (
	BackendAuto   = "auto"
	BackendHash   = "hash"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Embedder turns text into a fixed-length vector. Implementations must be
// deterministic for a given configuration and must return an error rather
// than a zero vector when they cannot embed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
	Close() error
}

// NewEmbedder builds the embedder selected by cfg. The auto backend prefers
// OpenAI, then Gemini, and falls back to the offline hash embedder.
func NewEmbedder(ctx context.Context, cfg EmbeddingsConfig) (Embedder, error) {
	backend := ResolveBackend(cfg)

	switch backend {
	case BackendHash:
		return NewHashEmbedder(cfg.Dimension), nil

	case BackendOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:    key,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})

	case BackendGemini:
		key := cfg.APIKey
		if key == "" {
			key = geminiKeyFromEnv()
		}
		return NewGeminiEmbedder(ctx, GeminiConfig{
			APIKey:    key,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})

	default:
		return nil, fmt.Errorf("unsupported embeddings backend: %s", cfg.Backend)
	}
}

func ResolveBackend(cfg EmbeddingsConfig) string {
	if cfg.Backend != "" && cfg.Backend != BackendAuto {
		return cfg.Backend
	}
	if cfg.APIKey != "" || os.Getenv("OPENAI_API_KEY") != "" {
		return BackendOpenAI
	}
	if geminiKeyFromEnv() != "" {
		return BackendGemini
	}
	return BackendHash
}

func geminiKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	result := make([]float32, len(vec))
	for i, v := range vec {
		result[i] = float32(float64(v) / norm)
	}

	return result
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
