package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, relevance ranking is disabled.
//
// The core treats Embed as a synchronous, potentially slow external
// call and puts the embedding cache in front of it to bound how often
// it is invoked. Retry policy for a flaky provider belongs to callers.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is constant for a given store instance.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to ranking.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
