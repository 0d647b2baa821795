package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestNewMemory(t *testing.T) {
	meta := map[string]any{"type": "note"}
	mem := NewMemory("hello", []float32{1, 0}, meta)

	if mem.ID == "" {
		t.Error("expected an id")
	}
	if mem.Content != "hello" {
		t.Errorf("content = %q, want %q", mem.Content, "hello")
	}
	if mem.Timestamp.IsZero() || mem.Timestamp.Location().String() != "UTC" {
		t.Errorf("timestamp = %v, want non-zero UTC", mem.Timestamp)
	}

	// metadata is copied, not aliased
	meta["type"] = "changed"
	if mem.Metadata["type"] != "note" {
		t.Errorf("metadata aliased caller map: %v", mem.Metadata)
	}

	other := NewMemory("hello", nil, nil)
	if other.ID == mem.ID {
		t.Error("expected distinct ids")
	}
	if other.Metadata == nil {
		t.Error("expected non-nil metadata")
	}
}

func TestMemoryString(t *testing.T) {
	mem := NewMemory(strings.Repeat("a", 80), make([]float32, 3), nil)
	s := mem.String()

	if !strings.HasPrefix(s, "Memory(id="+mem.ID[:8]) {
		t.Errorf("unexpected prefix: %s", s)
	}
	if !strings.Contains(s, strings.Repeat("a", 50)+"...") || !strings.Contains(s, "dim=3") {
		t.Errorf("unexpected string: %s", s)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 9, "truncated..."},
		{"héllo wörld", 5, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestDimensionMismatchIsStorageFailure(t *testing.T) {
	if !errors.Is(ErrDimensionMismatch, ErrStorageFailure) {
		t.Error("ErrDimensionMismatch should be a storage failure")
	}
	if errors.Is(ErrEmbeddingFailure, ErrStorageFailure) {
		t.Error("ErrEmbeddingFailure should not be a storage failure")
	}
}
