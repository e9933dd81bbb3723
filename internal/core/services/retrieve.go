package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Retriever selects a relevant, diverse subset of chunks for a question
// using maximal-marginal-relevance over a cosine candidate pool. Pure
// nearest-neighbour would let near-duplicate chunks crowd out
// complementary evidence.
type Retriever struct {
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever using the given embedder for questions.
func NewRetriever(embedder driven.EmbeddingService) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve returns up to cfg.K chunks for the question, most relevant
// first. Candidates come from the index (cfg.FetchK of them); MMR then
// trades relevance against redundancy under cfg.Lambda.
func (r *Retriever) Retrieve(
	ctx context.Context, index driven.VectorIndex, question string, cfg domain.RetrievalConfig,
) ([]domain.Chunk, error) {
	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	candidates, err := index.Candidates(ctx, query, cfg.FetchK)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	selected := selectMMR(candidates, cfg.K, cfg.Lambda)
	logger.Debug("retrieved %d/%d candidates (k=%d, fetch_k=%d, lambda=%.2f)",
		len(selected), len(candidates), cfg.K, cfg.FetchK, cfg.Lambda)

	chunks := make([]domain.Chunk, len(selected))
	for i, c := range selected {
		chunks[i] = c.Chunk
	}
	return chunks, nil
}

// selectMMR greedily picks k candidates maximising
// lambda*sim(query) - (1-lambda)*max-sim(already selected).
// The first pick is always the most query-similar candidate.
func selectMMR(candidates []driven.Candidate, k int, lambda float64) []driven.Candidate {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	remaining := make([]driven.Candidate, len(candidates))
	copy(remaining, candidates)

	selected := make([]driven.Candidate, 0, k)
	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				sim := cosine(cand.Chunk.Embedding, s.Chunk.Embedding)
				if sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*cand.Similarity - (1-lambda)*redundancy
			if score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosine(a, b []float32) float64 {
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
