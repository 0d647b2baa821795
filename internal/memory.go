package internal

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmbeddingFailure = errors.New("embedding failure")
	ErrStorageFailure   = errors.New("storage failure")
	ErrNotInitialized   = errors.New("not initialized")

	// ErrDimensionMismatch reports a vector whose length or provider differs
	// from the one the collection was built with. It is a storage failure.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding space mismatch", ErrStorageFailure)
)

const (
	MetaTimestamp = "timestamp"
	MetaSequence  = "seq"
	MetaType      = "type"
	MetaSource    = "source"
)

// Memory is one immutable embedded text record.
type Memory struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]any
	Timestamp time.Time
}

func NewMemory(content string, embedding []float32, metadata map[string]any) *Memory {
	meta := make(map[string]any, len(metadata))
	maps.Copy(meta, metadata)

	return &Memory{
		ID:        uuid.NewString(),
		Content:   content,
		Embedding: embedding,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

func (m *Memory) String() string {
	id := m.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Memory(id=%s..., content=%q, dim=%d)", id, truncate(m.Content, 50), len(m.Embedding))
}

// Match is a retrieved memory with its cosine similarity to the query.
type Match struct {
	Memory *Memory
	Score  float32
}

type MemoryRepository interface {
	Add(ctx context.Context, content string, metadata map[string]any) (*Memory, error)
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
	Search(ctx context.Context, query string, topK int, opts ...SearchOption) ([]Match, error)
	Count(ctx context.Context) int
	ClearAll(ctx context.Context) error
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
