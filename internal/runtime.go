package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Runtime is the wired agent for one scope: embedder, persistent codex,
// optional journal and the synaptic loop on top.
type Runtime struct {
	Scope    Scope
	Config   *Config
	Embedder Embedder
	Index    *ChromemIndex
	Codex    *Codex
	Journal  *Journal
	Loop     *SynapticLoop
}

// InitScope creates the data directory layout and writes cfg as the scope's
// configuration. It fails if the scope already exists.
func InitScope(scope Scope, cfg *Config) error {
	if scope.Initialized() {
		return fmt.Errorf("already initialized at %s", scope.DataPath)
	}

	if err := os.MkdirAll(scope.CodexPath(), 0755); err != nil {
		return fmt.Errorf("create codex directory: %w", err)
	}

	if err := SaveConfig(scope, cfg); err != nil {
		return err
	}

	if cfg.Journal.Enabled {
		if _, err := OpenJournal(scope.JournalPath()); err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
	}

	return nil
}

// OpenRuntime wires the agent for an initialized scope.
func OpenRuntime(ctx context.Context, scope Scope, cfg *Config) (*Runtime, error) {
	if !scope.Initialized() {
		return nil, fmt.Errorf("%w: no data directory at %s", ErrNotInitialized, scope.DataPath)
	}
	if cfg == nil {
		loaded, err := LoadConfig(scope)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := LoggerFrom(ctx)

	embedder, err := NewEmbedder(ctx, cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	index, err := NewChromemIndex(scope.CodexPath(), embedder.Dimension(), embedder.Name(),
		WithCompression(cfg.Storage.Compress))
	if err != nil {
		embedder.Close()
		return nil, err
	}

	codex, err := NewCodex(index, embedder)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	rt := &Runtime{
		Scope:    scope,
		Config:   cfg,
		Embedder: embedder,
		Index:    index,
		Codex:    codex,
	}

	var opts []LoopOption
	if cfg.Journal.Enabled {
		journal, err := OpenJournal(scope.JournalPath())
		if err != nil {
			logger.Warn("journal unavailable, continuing without it", "error", err)
		} else {
			rt.Journal = journal
			opts = append(opts, WithJournal(journal))
		}
	}

	rt.Loop = NewSynapticLoop(codex, opts...)

	logger.Debug("runtime ready",
		"scope", scope.Type,
		"data", scope.DataPath,
		"embedder", embedder.Name(),
		"memories", index.Count())

	return rt, nil
}

func (r *Runtime) Close() error {
	return errors.Join(r.Index.Close(), r.Embedder.Close())
}
