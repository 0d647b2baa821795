package v1

import "time"

// Memory represents a stored memory entry.
type Memory struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// SearchResult represents a semantic search hit.
type SearchResult struct {
	Memory Memory  `json:"memory"`
	Score  float32 `json:"score"`
}

// State is a snapshot of the agent's beliefs and intention.
type State struct {
	Beliefs     []string `json:"beliefs"`
	Intention   string   `json:"intention,omitempty"`
	MemoryCount int      `json:"memory_count"`
}

// Commit represents one recorded cycle in the state journal.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
