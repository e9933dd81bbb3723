package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Candidate is a similarity-scored chunk returned from the index.
// The chunk carries its embedding so diversity-aware selection can compare
// candidates against each other without another index round-trip.
type Candidate struct {
	// Chunk is the matched chunk, embedding included.
	Chunk domain.Chunk

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}

// VectorIndex stores chunk vectors for one request and serves similarity
// candidates. An index is built once, is read-only afterwards, and may be
// consulted concurrently by in-flight question tasks without locking on
// the caller's side. It is discarded when the request completes; nothing
// survives across requests.
type VectorIndex interface {
	// Add inserts a chunk with its embedding. Only valid during build.
	Add(ctx context.Context, chunk domain.Chunk) error

	// Candidates returns up to fetchK chunks ranked by similarity to the
	// query vector, most similar first.
	Candidates(ctx context.Context, query []float32, fetchK int) ([]Candidate, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Close releases resources.
	Close() error
}
