package llm

import "context"

// Provider defines the interface for text-completion backends.
// Implementations handle protocol-specific details such as request
// formatting, authentication, and response parsing.
type Provider interface {
	// Complete sends a chat completion request and returns the full response.
	Complete(ctx context.Context, messages []Message, opts Options) (*Response, error)
}

// Embedder produces vector embeddings for texts, used by the retrieval
// layer for similarity search.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Options configures a single completion call.
type Options struct {
	// Deterministic forces temperature 0 (and a fixed seed when the
	// provider supports one). Used for classification and contract drafting.
	Deterministic bool
}

// Config holds common configuration for LLM providers.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	EmbedModel  string
	MaxTokens   int
	Temperature float32
	UseSeed     bool
	Seed        int
}
