package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"gopkg.in/yaml.v3"
)

const (
	CollectionName   = "codex_memories"
	ManifestFilename = "manifest.yaml"
	chromemDir       = "db"
)

var _ VectorIndex = (*ChromemIndex)(nil)

var errNoEmbeddingFunc = errors.New("documents must carry precomputed embeddings")

// ChromemIndex is a persistent cosine-similarity index over one chromem-go
// collection. A manifest next to the database pins the embedding space.
type ChromemIndex struct {
	mu       sync.RWMutex
	db       *chromem.DB
	col      *chromem.Collection
	manifest indexManifest
	basePath string
	compress bool
}

type indexManifest struct {
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
	Provider   string `yaml:"provider"`
	NextSeq    uint64 `yaml:"next_seq"`
	Generation int    `yaml:"generation,omitempty"`
}

type IndexOption func(*indexConfig)

type indexConfig struct {
	compress bool
}

func WithCompression(enabled bool) IndexOption {
	return func(c *indexConfig) { c.compress = enabled }
}

// NewChromemIndex opens or creates the index at basePath for vectors of the
// given dimension produced by provider. Reopening a non-empty index with a
// different dimension or provider fails with ErrDimensionMismatch.
func NewChromemIndex(basePath string, dimension int, provider string, opts ...IndexOption) (*ChromemIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidInput, dimension)
	}

	var cfg indexConfig
	for _, o := range opts {
		o(&cfg)
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("%w: create codex directory: %w", ErrStorageFailure, err)
	}

	idx := &ChromemIndex{basePath: basePath, compress: cfg.compress}
	if err := idx.loadManifest(); err != nil {
		return nil, err
	}

	db, err := chromem.NewPersistentDB(idx.dbPath(idx.manifest.Generation), cfg.compress)
	if err != nil {
		return nil, fmt.Errorf("%w: open vector database: %w", ErrStorageFailure, err)
	}

	col, err := db.GetOrCreateCollection(CollectionName, collectionMetadata(), refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: open collection: %w", ErrStorageFailure, err)
	}

	idx.db = db
	idx.col = col

	m := idx.manifest
	if col.Count() > 0 && m.Dimension == 0 {
		return nil, fmt.Errorf("%w: collection holds %d records but %s is missing",
			ErrDimensionMismatch, col.Count(), ManifestFilename)
	}
	if col.Count() > 0 {
		if m.Dimension != dimension {
			return nil, fmt.Errorf("%w: collection holds %d-dimensional vectors, provider %q produces %d",
				ErrDimensionMismatch, m.Dimension, provider, dimension)
		}
		if m.Provider != "" && m.Provider != provider {
			return nil, fmt.Errorf("%w: collection was embedded with %q, not %q",
				ErrDimensionMismatch, m.Provider, provider)
		}
		return idx, nil
	}

	idx.manifest = indexManifest{
		Collection: CollectionName,
		Dimension:  dimension,
		Provider:   provider,
		NextSeq:    m.NextSeq,
		Generation: m.Generation,
	}
	if err := idx.saveManifest(); err != nil {
		return nil, err
	}

	return idx, nil
}

func (c *ChromemIndex) Upsert(ctx context.Context, id string, vector []float32, payload Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(vector) != c.manifest.Dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, c.manifest.Dimension, len(vector))
	}

	seq := c.manifest.NextSeq
	c.manifest.NextSeq++
	if err := c.saveManifest(); err != nil {
		c.manifest.NextSeq--
		return err
	}

	metadata := make(map[string]string, len(payload.Metadata)+1)
	for k, v := range payload.Metadata {
		metadata[k] = v
	}
	metadata[MetaSequence] = strconv.FormatUint(seq, 10)

	doc := chromem.Document{
		ID:        id,
		Content:   payload.Content,
		Embedding: vector,
		Metadata:  metadata,
	}
	if err := c.col.AddDocument(ctx, doc); err != nil {
		// chromem keeps the document in memory even when persisting it fails
		if derr := c.col.Delete(ctx, nil, nil, id); derr != nil {
			LoggerFrom(ctx).Warn("could not roll back unpersisted document", "id", id, "error", derr)
		}
		c.manifest.NextSeq = seq
		if serr := c.saveManifest(); serr != nil {
			LoggerFrom(ctx).Warn("could not restore manifest sequence", "error", serr)
		}
		return fmt.Errorf("%w: add document: %w", ErrStorageFailure, err)
	}

	return nil
}

// Nearest ranks every stored vector against the query and returns the k most
// similar. Equal scores keep insertion order.
func (c *ChromemIndex) Nearest(ctx context.Context, vector []float32, k int) ([]Neighbor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(vector) != c.manifest.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, c.manifest.Dimension, len(vector))
	}

	n := c.col.Count()
	if k <= 0 || n == 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size; querying all of it
	// lets ties across the k boundary resolve by sequence.
	results, err := c.col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query collection: %w", ErrStorageFailure, err)
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, r := range results {
		seq, err := strconv.ParseUint(r.Metadata[MetaSequence], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s has no valid sequence", ErrStorageFailure, r.ID)
		}
		neighbors = append(neighbors, Neighbor{
			ID:        r.ID,
			Payload:   Payload{Content: r.Content, Metadata: r.Metadata},
			Embedding: r.Embedding,
			Score:     r.Similarity,
			Seq:       seq,
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].Seq < neighbors[j].Seq
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// DeleteAll switches the index to a fresh, empty database generation. The
// manifest rename is the commit point: any failure before it leaves the
// current collection untouched, on disk and in memory.
func (c *ChromemIndex) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.manifest
	next := prev.Generation + 1
	path := c.dbPath(next)

	// leftovers of an interrupted clear
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: prepare empty collection: %w", ErrStorageFailure, err)
	}

	db, err := chromem.NewPersistentDB(path, c.compress)
	if err != nil {
		os.RemoveAll(path)
		return fmt.Errorf("%w: create empty database: %w", ErrStorageFailure, err)
	}
	col, err := db.CreateCollection(CollectionName, collectionMetadata(), refuseEmbedding)
	if err != nil {
		os.RemoveAll(path)
		return fmt.Errorf("%w: create empty collection: %w", ErrStorageFailure, err)
	}

	c.manifest.Generation = next
	c.manifest.NextSeq = 0
	if err := c.saveManifest(); err != nil {
		c.manifest = prev
		os.RemoveAll(path)
		return err
	}

	c.db = db
	c.col = col

	if err := os.RemoveAll(c.dbPath(prev.Generation)); err != nil {
		LoggerFrom(ctx).Warn("could not remove cleared collection files", "error", err)
	}
	return nil
}

func (c *ChromemIndex) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.col == nil {
		return 0
	}
	return c.col.Count()
}

func (c *ChromemIndex) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manifest.Dimension
}

func (c *ChromemIndex) Provider() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manifest.Provider
}

// Close is a no-op: the persistent DB writes every document on insert.
func (c *ChromemIndex) Close() error {
	return nil
}

// dbPath is the chromem directory of a generation. Generation 0 keeps the
// plain name so existing data directories open unchanged.
func (c *ChromemIndex) dbPath(generation int) string {
	if generation == 0 {
		return filepath.Join(c.basePath, chromemDir)
	}
	return filepath.Join(c.basePath, chromemDir+"-"+strconv.Itoa(generation))
}

func (c *ChromemIndex) loadManifest() error {
	data, err := os.ReadFile(filepath.Join(c.basePath, ManifestFilename))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read manifest: %w", ErrStorageFailure, err)
	}

	var m indexManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: parse manifest: %w", ErrStorageFailure, err)
	}
	c.manifest = m
	return nil
}

func (c *ChromemIndex) saveManifest() error {
	data, err := yaml.Marshal(c.manifest)
	if err != nil {
		return fmt.Errorf("%w: marshal manifest: %w", ErrStorageFailure, err)
	}

	path := filepath.Join(c.basePath, ManifestFilename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write manifest: %w", ErrStorageFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace manifest: %w", ErrStorageFailure, err)
	}
	return nil
}

func collectionMetadata() map[string]string {
	return map[string]string{"description": "Agent long-term memory storage"}
}

func refuseEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}
