package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text (a question).
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call and
	// reports the token usage the provider billed for it. Index build uses
	// this once per request; a failure aborts the request (a partial index
	// is worse than a clear early error) and is not retried.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, domain.TokenUsage, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
