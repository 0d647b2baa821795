package internal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

var errFakeEmbed = errors.New("fake embedder down")

// fakeEmbedder wraps HashEmbedder and can be told to fail or return a zero
// vector on specific calls (1-based).
type fakeEmbedder struct {
	*HashEmbedder

	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	zero   bool
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{HashEmbedder: NewHashEmbedder(dim), failOn: map[int]bool{}}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.failOn[n] {
		return nil, errFakeEmbed
	}
	if f.zero {
		return make([]float32, f.Dimension()), nil
	}
	return f.HashEmbedder.Embed(ctx, text)
}

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestIndex(t *testing.T, dir string, emb Embedder) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(dir, emb.Dimension(), emb.Name())
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	return idx
}

func newTestCodex(t *testing.T, emb Embedder) (*Codex, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "codex")
	codex, err := NewCodex(newTestIndex(t, dir, emb), emb)
	if err != nil {
		t.Fatalf("new codex: %v", err)
	}
	return codex, dir
}
