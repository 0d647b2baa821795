package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	dataDir   string
	scope     string
	backend   string
	model     string
	dimension int
	journal   bool
}

// WithDataDir pins the data directory, bypassing scope discovery.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithBackend selects the embeddings backend used when the client
// initializes a new data directory.
func WithBackend(backend string) Option {
	return func(c *clientConfig) {
		c.backend = backend
	}
}

func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithDimension sets the embedding dimension.
func WithDimension(dim int) Option {
	return func(c *clientConfig) {
		c.dimension = dim
	}
}

// WithJournal turns cycle recording on or off for a new data directory.
func WithJournal(enabled bool) Option {
	return func(c *clientConfig) {
		c.journal = enabled
	}
}
