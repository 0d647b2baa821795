package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/4thel00z/synaptic/internal"
)

// ErrJournalDisabled is returned by History when the data directory does
// not record cycles.
var ErrJournalDisabled = errors.New("journal is disabled")

// Client provides programmatic access to the agent: its memory codex and
// the cognitive loop built on it.
type Client struct {
	rt *internal.Runtime
}

// New opens the agent for the resolved scope, initializing the data
// directory first if it does not exist yet. Backend, model, dimension and
// journal options only take effect on initialization; an existing directory
// keeps its config.yaml.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		backend: internal.BackendAuto,
		journal: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	scope := internal.NewScopeResolver().Resolve(cfg.scope, cfg.dataDir)

	if !scope.Initialized() {
		conf := internal.DefaultConfig()
		conf.Embeddings.Backend = cfg.backend
		conf.Embeddings.Model = cfg.model
		conf.Embeddings.Dimension = cfg.dimension
		conf.Journal.Enabled = cfg.journal

		if err := internal.InitScope(scope, conf); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	rt, err := internal.OpenRuntime(ctx, scope, nil)
	if err != nil {
		return nil, err
	}

	return &Client{rt: rt}, nil
}

// Process runs one cognitive cycle for text.
func (c *Client) Process(ctx context.Context, text string) (State, error) {
	if err := c.rt.Loop.ProcessInput(ctx, text); err != nil {
		return State{}, fmt.Errorf("process: %w", err)
	}
	return c.State(ctx), nil
}

// Remember stores text as a memory without touching beliefs or intention.
func (c *Client) Remember(ctx context.Context, text string, metadata map[string]any) (Memory, error) {
	mem, err := c.rt.Codex.Add(ctx, text, metadata)
	if err != nil {
		return Memory{}, fmt.Errorf("remember: %w", err)
	}
	return toMemory(mem), nil
}

// Recall returns up to topK memories ranked by similarity to query.
func (c *Client) Recall(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	matches, err := c.rt.Codex.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Memory: toMemory(m.Memory),
			Score:  m.Score,
		})
	}
	return results, nil
}

func (c *Client) Count(ctx context.Context) int {
	return c.rt.Codex.Count(ctx)
}

// Clear deletes every stored memory.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.rt.Codex.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

func (c *Client) Beliefs() []string {
	return c.rt.Loop.Beliefs()
}

// Intention returns the current intention and whether one has formed.
func (c *Client) Intention() (string, bool) {
	return c.rt.Loop.Intention()
}

func (c *Client) ClearBeliefs() {
	c.rt.Loop.ClearBeliefs()
}

func (c *Client) State(ctx context.Context) State {
	s := c.rt.Loop.State(ctx)
	return State{
		Beliefs:     s.Beliefs,
		Intention:   s.Intention,
		MemoryCount: s.MemoryCount,
	}
}

// History lists recorded cycles, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]Commit, error) {
	if c.rt.Journal == nil {
		return nil, ErrJournalDisabled
	}

	entries, err := c.rt.Journal.Log(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	commits := make([]Commit, 0, len(entries))
	for _, e := range entries {
		commits = append(commits, Commit{
			Hash:      e.Hash,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}
	return commits, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return c.rt.Close()
}

func toMemory(m *internal.Memory) Memory {
	meta := make(map[string]string, len(m.Metadata))
	for k, v := range m.Metadata {
		meta[k] = fmt.Sprint(v)
	}
	return Memory{
		ID:        m.ID,
		Content:   m.Content,
		Metadata:  meta,
		Timestamp: m.Timestamp,
	}
}
