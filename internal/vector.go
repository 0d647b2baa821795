package internal

import "context"

// Payload is what the index stores next to a vector.
type Payload struct {
	Content  string
	Metadata map[string]string
}

type Neighbor struct {
	ID        string
	Payload   Payload
	Embedding []float32
	Score     float32 // cosine similarity, higher is better
	Seq       uint64  // insertion order
}

type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, payload Payload) error
	Nearest(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
	DeleteAll(ctx context.Context) error
	Count() int
	Dimension() int
	Close() error
}
