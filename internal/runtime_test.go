package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashConfig(dim int) *Config {
	cfg := DefaultConfig()
	cfg.Embeddings.Backend = BackendHash
	cfg.Embeddings.Dimension = dim
	return cfg
}

func TestInitScopeCreatesLayout(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))

	require.NoError(t, InitScope(scope, hashConfig(0)))

	assert.DirExists(t, scope.CodexPath())
	assert.DirExists(t, filepath.Join(scope.JournalPath(), ".git"))
	assert.FileExists(t, scope.ConfigPath())

	err := InitScope(scope, hashConfig(0))
	assert.Error(t, err, "second init must fail")
}

func TestInitScopeWithoutJournal(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))
	cfg := hashConfig(0)
	cfg.Journal.Enabled = false

	require.NoError(t, InitScope(scope, cfg))
	assert.NoDirExists(t, scope.JournalPath())
}

func TestOpenRuntimeNotInitialized(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "missing"))

	_, err := OpenRuntime(context.Background(), scope, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestOpenRuntimeWiresLoop(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))
	require.NoError(t, InitScope(scope, hashConfig(128)))

	ctx := context.Background()
	rt, err := OpenRuntime(ctx, scope, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "hash", rt.Embedder.Name())
	assert.Equal(t, 128, rt.Codex.Dimension())
	require.NotNil(t, rt.Journal)

	require.NoError(t, rt.Loop.ProcessInput(ctx, "first light"))
	assert.Equal(t, 1, rt.Codex.Count(ctx))

	entries, err := rt.Journal.Log(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenRuntimePersistsAcrossOpens(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))
	require.NoError(t, InitScope(scope, hashConfig(0)))
	ctx := context.Background()

	rt, err := OpenRuntime(ctx, scope, nil)
	require.NoError(t, err)
	_, err = rt.Codex.Add(ctx, "persisted thought", nil)
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	rt, err = OpenRuntime(ctx, scope, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 1, rt.Codex.Count(ctx))
	got, err := rt.Codex.Retrieve(ctx, "persisted thought", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted thought"}, got)
}

func TestOpenRuntimeRejectsChangedEmbeddingSpace(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))
	require.NoError(t, InitScope(scope, hashConfig(64)))
	ctx := context.Background()

	rt, err := OpenRuntime(ctx, scope, nil)
	require.NoError(t, err)
	_, err = rt.Codex.Add(ctx, "sixty four", nil)
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	_, err = OpenRuntime(ctx, scope, hashConfig(32))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, err, ErrStorageFailure)
}

func TestOpenRuntimeBrokenJournalContinues(t *testing.T) {
	scope := NewScopeResolver().Explicit(filepath.Join(t.TempDir(), "agent"))
	cfg := hashConfig(0)
	cfg.Journal.Enabled = false
	require.NoError(t, InitScope(scope, cfg))

	// a regular file where the journal directory should be
	require.NoError(t, os.WriteFile(scope.JournalPath(), []byte("x"), 0644))

	cfg.Journal.Enabled = true
	rt, err := OpenRuntime(context.Background(), scope, cfg)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Journal)
	assert.NoError(t, rt.Loop.ProcessInput(context.Background(), "still works"))
}
