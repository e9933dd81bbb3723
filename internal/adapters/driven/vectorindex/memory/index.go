// Package memory provides a request-scoped in-memory vector index using
// brute-force cosine similarity. A single uploaded document yields at most
// a few hundred chunks, which is well inside exact-scan territory.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores chunk vectors for the lifetime of one request. After the
// build phase it is read-only and safe for concurrent Candidates calls.
type Index struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Add inserts a chunk with its embedding.
func (idx *Index) Add(_ context.Context, chunk domain.Chunk) error {
	if len(chunk.Embedding) == 0 {
		return errors.New("memory index: chunk has no embedding")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = append(idx.chunks, chunk)
	return nil
}

// Candidates returns up to fetchK chunks ranked by cosine similarity to the
// query vector, most similar first. Ties break on chunk index so ordering
// is deterministic.
func (idx *Index) Candidates(_ context.Context, query []float32, fetchK int) ([]driven.Candidate, error) {
	if len(query) == 0 {
		return nil, errors.New("memory index: empty query vector")
	}
	if fetchK <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := make([]driven.Candidate, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		candidates = append(candidates, driven.Candidate{
			Chunk:      chunk,
			Similarity: Cosine(query, chunk.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Chunk.Index < candidates[j].Chunk.Index
	})

	if fetchK < len(candidates) {
		candidates = candidates[:fetchK]
	}
	return candidates, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = nil
	return nil
}

// Cosine computes cosine similarity between two vectors. Vectors are not
// assumed to be normalised. Mismatched lengths compare over the shorter
// prefix; a zero vector scores zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
