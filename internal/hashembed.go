package internal

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const DefaultHashDimension = 384

var _ Embedder = (*HashEmbedder)(nil)

// HashEmbedder is an offline bag-of-words embedder. Each lowercase word is
// hashed into a bucket and the counts are L2-normalised, so cosine
// similarity tracks lexical overlap.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{dimension: dimension}
}

func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		// punctuation-only input still gets a stable, non-zero vector
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			tokens = []string{trimmed}
		}
	}

	vec := make([]float32, h.dimension)
	for _, tok := range tokens {
		vec[h.bucket(tok)]++
	}

	return l2Normalize(vec), nil
}

func (h *HashEmbedder) Dimension() int {
	return h.dimension
}

func (h *HashEmbedder) Name() string {
	return BackendHash
}

func (h *HashEmbedder) Close() error {
	return nil
}

func (h *HashEmbedder) bucket(token string) int {
	f := fnv.New64a()
	f.Write([]byte(token))
	return int(f.Sum64() % uint64(h.dimension))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
