package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	// RelatedTopK bounds the related-memory lookup of each cycle.
	RelatedTopK = 3

	TypeSensoryInput = "sensory_input"
	SourceExternal   = "external"

	IntentionAwait = "Await new sensory input to form beliefs and determine actions."
	IntentionFresh = "Formulate a response based on recent input; no stored memories to draw on yet."
)

func recentInputBelief(text string) string {
	return "The user recently said: " + text
}

func relatedMemoriesBelief(n int) string {
	return fmt.Sprintf("I have %d related memories about similar topics", n)
}

func memoryIntention(count int) string {
	return fmt.Sprintf("Formulate a response based on recent input and %d stored memories.", count)
}

// State is a point-in-time view of the cognitive cycle.
type State struct {
	Beliefs     []string `yaml:"beliefs" json:"beliefs"`
	Intention   string   `yaml:"intention,omitempty" json:"intention,omitempty"`
	MemoryCount int      `yaml:"memory_count" json:"memory_count"`
}

// StateRecorder receives a snapshot after every completed cycle.
type StateRecorder interface {
	Record(ctx context.Context, state State, input string) error
}

// BeliefSet is a set of strings that remembers insertion order.
type BeliefSet struct {
	order []string
	index map[string]struct{}
}

func NewBeliefSet() *BeliefSet {
	return &BeliefSet{index: make(map[string]struct{})}
}

// Add reports whether b was new.
func (s *BeliefSet) Add(b string) bool {
	if _, ok := s.index[b]; ok {
		return false
	}
	s.index[b] = struct{}{}
	s.order = append(s.order, b)
	return true
}

func (s *BeliefSet) Contains(b string) bool {
	_, ok := s.index[b]
	return ok
}

func (s *BeliefSet) Len() int {
	return len(s.order)
}

func (s *BeliefSet) Clear() {
	s.order = nil
	clear(s.index)
}

func (s *BeliefSet) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

type LoopOption func(*SynapticLoop)

func WithJournal(r StateRecorder) LoopOption {
	return func(l *SynapticLoop) { l.journal = r }
}

type InputOption func(*inputOptions)

type inputOptions struct {
	source   string
	metadata map[string]any
}

// WithSource overrides the "source" metadata of the stored input.
func WithSource(source string) InputOption {
	return func(o *inputOptions) { o.source = source }
}

// WithMetadata attaches extra metadata to the stored input.
func WithMetadata(metadata map[string]any) InputOption {
	return func(o *inputOptions) { o.metadata = metadata }
}

// SynapticLoop runs the perceive, believe, deliberate cycle over a memory
// repository. One cycle runs at a time per loop.
type SynapticLoop struct {
	mu        sync.Mutex
	codex     MemoryRepository
	beliefs   *BeliefSet
	intention *string
	journal   StateRecorder
}

func NewSynapticLoop(codex MemoryRepository, opts ...LoopOption) *SynapticLoop {
	l := &SynapticLoop{
		codex:   codex,
		beliefs: NewBeliefSet(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// ProcessInput stores text as a memory and updates beliefs and intention.
// Blank input is skipped with a warning. If storing fails the state is left
// untouched and the error returned; a failed related-memory lookup only
// costs the context belief.
func (l *SynapticLoop) ProcessInput(ctx context.Context, text string, opts ...InputOption) error {
	logger := LoggerFrom(ctx)

	if strings.TrimSpace(text) == "" {
		logger.Warn("empty input received, skipping processing")
		return nil
	}

	o := inputOptions{source: SourceExternal}
	for _, opt := range opts {
		opt(&o)
	}

	metadata := make(map[string]any, len(o.metadata)+2)
	for k, v := range o.metadata {
		metadata[k] = v
	}
	metadata[MetaType] = TypeSensoryInput
	metadata[MetaSource] = o.source

	l.mu.Lock()
	defer l.mu.Unlock()

	logger.Debug("processing sensory input", "input", truncate(text, 100))

	mem, err := l.codex.Add(ctx, text, metadata)
	if err != nil {
		return fmt.Errorf("store input: %w", err)
	}
	logger.Debug("stored memory", "id", mem.ID)

	l.updateBeliefs(ctx, text, mem.ID)

	count := l.codex.Count(ctx)
	intention := l.deliberate(count)
	l.intention = &intention

	if l.journal != nil {
		state := State{Beliefs: l.beliefs.Items(), Intention: intention, MemoryCount: count}
		if err := l.journal.Record(ctx, state, text); err != nil {
			logger.Warn("could not record cycle in journal", "error", err)
		}
	}

	return nil
}

func (l *SynapticLoop) updateBeliefs(ctx context.Context, text, storedID string) {
	l.beliefs.Add(recentInputBelief(text))

	related, err := l.codex.Search(ctx, text, RelatedTopK, ExcludeIDs(storedID))
	if err != nil {
		LoggerFrom(ctx).Warn("could not retrieve related memories", "error", err)
		return
	}
	if len(related) > 0 {
		l.beliefs.Add(relatedMemoriesBelief(len(related)))
	}
}

func (l *SynapticLoop) deliberate(memoryCount int) string {
	switch {
	case l.beliefs.Len() == 0:
		return IntentionAwait
	case memoryCount <= 1:
		return IntentionFresh
	default:
		return memoryIntention(memoryCount)
	}
}

// Beliefs returns a copy of the current beliefs in the order they formed.
func (l *SynapticLoop) Beliefs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.beliefs.Items()
}

func (l *SynapticLoop) Intention() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.intention == nil {
		return "", false
	}
	return *l.intention, true
}

// ClearBeliefs empties the belief set. The intention and stored memories
// are kept.
func (l *SynapticLoop) ClearBeliefs() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beliefs.Clear()
}

// Reset clears beliefs and intention.
func (l *SynapticLoop) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beliefs.Clear()
	l.intention = nil
}

func (l *SynapticLoop) State(ctx context.Context) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := State{
		Beliefs:     l.beliefs.Items(),
		MemoryCount: l.codex.Count(ctx),
	}
	if l.intention != nil {
		s.Intention = *l.intention
	}
	return s
}
