package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const DefaultTopK = 5

var _ MemoryRepository = (*Codex)(nil)

// Codex is the long-term memory store: text records embedded by an Embedder
// and ranked by cosine similarity in a VectorIndex. Writers are serialized;
// readers run concurrently.
type Codex struct {
	mu       sync.RWMutex
	index    VectorIndex
	embedder Embedder
}

func NewCodex(index VectorIndex, embedder Embedder) (*Codex, error) {
	if index == nil || embedder == nil {
		return nil, fmt.Errorf("%w: codex needs an index and an embedder", ErrInvalidInput)
	}
	if index.Dimension() != embedder.Dimension() {
		return nil, fmt.Errorf("%w: index is %d-dimensional, embedder %s produces %d",
			ErrDimensionMismatch, index.Dimension(), embedder.Name(), embedder.Dimension())
	}
	return &Codex{index: index, embedder: embedder}, nil
}

type SearchOption func(*searchOptions)

type searchOptions struct {
	exclude map[string]struct{}
}

// ExcludeIDs drops the given memory ids from the candidates before ranking.
func ExcludeIDs(ids ...string) SearchOption {
	return func(o *searchOptions) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			o.exclude[id] = struct{}{}
		}
	}
}

// Add embeds content and stores it. The record is either fully stored or
// not stored at all.
func (c *Codex) Add(ctx context.Context, content string, metadata map[string]any) (*Memory, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
	}

	vec, err := c.embed(ctx, content)
	if err != nil {
		return nil, err
	}

	mem := NewMemory(content, vec, metadata)
	delete(mem.Metadata, MetaTimestamp)
	delete(mem.Metadata, MetaSequence)

	flat, err := flattenMetadata(mem.Metadata)
	if err != nil {
		return nil, err
	}
	flat[MetaTimestamp] = mem.Timestamp.Format(time.RFC3339Nano)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.index.Upsert(ctx, mem.ID, vec, Payload{Content: content, Metadata: flat}); err != nil {
		if errors.Is(err, ErrStorageFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	LoggerFrom(ctx).Debug("memory stored", "id", mem.ID, "content", truncate(content, 50))
	return mem, nil
}

// Retrieve returns the contents of the topK memories most similar to query,
// most similar first.
func (c *Codex) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	matches, err := c.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m.Memory.Content)
	}
	return contents, nil
}

// Search is Retrieve with full records and scores. topK larger than the
// repository is clamped; an empty repository yields an empty result without
// consulting the embedder.
func (c *Codex) Search(ctx context.Context, query string, topK int, opts ...SearchOption) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidInput, topK)
	}

	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	if c.index.Count() == 0 {
		return []Match{}, nil
	}

	vec, err := c.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	count := c.index.Count()
	k := min(min(topK, count)+len(o.exclude), count)
	if k == 0 {
		return []Match{}, nil
	}

	neighbors, err := c.index.Nearest(ctx, vec, k)
	if err != nil {
		if errors.Is(err, ErrStorageFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	matches := make([]Match, 0, min(topK, len(neighbors)))
	for _, n := range neighbors {
		if _, skip := o.exclude[n.ID]; skip {
			continue
		}
		matches = append(matches, Match{Memory: memoryFromNeighbor(n), Score: n.Score})
		if len(matches) == topK {
			break
		}
	}

	LoggerFrom(ctx).Debug("memories retrieved", "query", truncate(query, 50), "results", len(matches))
	return matches, nil
}

func (c *Codex) Count(ctx context.Context) int {
	return c.index.Count()
}

// ClearAll removes every memory. Concurrent searches see either the full
// repository or the empty one.
func (c *Codex) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.index.DeleteAll(ctx); err != nil {
		if errors.Is(err, ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	LoggerFrom(ctx).Info("cleared all memories")
	return nil
}

func (c *Codex) Dimension() int {
	return c.embedder.Dimension()
}

func (c *Codex) EmbedderName() string {
	return c.embedder.Name()
}

func (c *Codex) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmbeddingFailure, c.embedder.Name(), err)
	}
	if len(vec) == 0 || isZeroVector(vec) {
		return nil, fmt.Errorf("%w: %s returned an empty vector", ErrEmbeddingFailure, c.embedder.Name())
	}
	if len(vec) != c.index.Dimension() {
		return nil, fmt.Errorf("%w: expected %d dimensions, %s returned %d",
			ErrDimensionMismatch, c.index.Dimension(), c.embedder.Name(), len(vec))
	}
	return vec, nil
}

// flattenMetadata stores strings verbatim and JSON-encodes everything else.
// Reserved keys are dropped; the repository sets them itself.
func flattenMetadata(metadata map[string]any) (map[string]string, error) {
	flat := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		if k == MetaTimestamp || k == MetaSequence {
			continue
		}
		switch val := v.(type) {
		case string:
			flat[k] = val
		case nil:
			flat[k] = ""
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("%w: metadata %q: %w", ErrInvalidInput, k, err)
			}
			flat[k] = string(b)
		}
	}
	return flat, nil
}

func memoryFromNeighbor(n Neighbor) *Memory {
	mem := &Memory{
		ID:        n.ID,
		Content:   n.Payload.Content,
		Embedding: n.Embedding,
		Metadata:  make(map[string]any, len(n.Payload.Metadata)),
	}

	for k, v := range n.Payload.Metadata {
		switch k {
		case MetaSequence:
		case MetaTimestamp:
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				mem.Timestamp = ts
			}
		default:
			mem.Metadata[k] = v
		}
	}

	return mem
}
