package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/workerpool"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// errorAnswer is the degraded answer text for an isolated per-question
// failure.
const errorAnswer = "Error: service unavailable for this question."

// AnswerService drives the request-scoped RAG pipeline: ingest, chunk and
// index once per request, then retrieve/synthesize/reconcile per question.
// It owns the VectorIndex for the request's lifetime and the aggregate
// result map; individual questions share the index read-only.
type AnswerService struct {
	ingestor    *Ingestor
	chunker     *chunker.Chunker
	embedder    driven.EmbeddingService
	retriever   *Retriever
	synthesizer *Synthesizer
	newIndex    func() driven.VectorIndex
	pool        *workerpool.Pool
	retrieval   domain.RetrievalConfig
}

// NewAnswerService wires the pipeline. The worker pool is owned by the
// composition root and passed by reference; the service never spawns
// unbounded blocking work. newIndex constructs one fresh VectorIndex per
// request.
func NewAnswerService(
	ingestor *Ingestor,
	chnk *chunker.Chunker,
	embedder driven.EmbeddingService,
	retriever *Retriever,
	synthesizer *Synthesizer,
	newIndex func() driven.VectorIndex,
	pool *workerpool.Pool,
	retrieval domain.RetrievalConfig,
) *AnswerService {
	if retrieval.K <= 0 {
		retrieval = domain.DefaultRetrievalConfig()
	}
	return &AnswerService{
		ingestor:    ingestor,
		chunker:     chnk,
		embedder:    embedder,
		retriever:   retriever,
		synthesizer: synthesizer,
		newIndex:    newIndex,
		pool:        pool,
		retrieval:   retrieval,
	}
}

// AnswerBatch answers every question against the uploaded document.
//
// The result map is keyed by question text, so duplicate question strings
// collapse to one entry reflecting the last-processed result. That is a
// documented limitation of the output shape, not silently deduplicated
// input: every duplicate is still processed (and billed).
func (s *AnswerService) AnswerBatch(
	ctx context.Context, doc driving.DocumentUpload, questions []string,
) (map[string]domain.AnswerRecord, error) {
	start := time.Now()

	index, err := s.buildIndex(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	results := make(map[string]domain.AnswerRecord, len(questions))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pool.Size())
	for _, question := range questions {
		question := question
		g.Go(func() error {
			record := s.answerOne(gctx, index, question)
			mu.Lock()
			results[question] = record
			mu.Unlock()
			// Per-question failures never abort the batch.
			return nil
		})
	}
	_ = g.Wait()

	logger.Event("processed_request", map[string]any{
		"duration_sec":   time.Since(start).Seconds(),
		"question_count": len(questions),
	})

	return results, nil
}

// buildIndex runs the once-per-request stages on the worker pool: ingest
// the document, chunk it, embed every chunk in one bulk call, and load the
// vectors into a fresh index. The bulk embedding call is not retried; a
// transient failure here aborts the whole request, since a partial index
// is worse than a clear early error.
func (s *AnswerService) buildIndex(ctx context.Context, doc driving.DocumentUpload) (driven.VectorIndex, error) {
	var units []domain.TextUnit
	err := s.pool.Submit(ctx, func() error {
		var ingestErr error
		units, ingestErr = s.ingestor.Ingest(ctx, doc.Path, doc.Ext, doc.OriginalName)
		return ingestErr
	})
	if err != nil {
		return nil, err
	}

	index := s.newIndex()
	err = s.pool.Submit(ctx, func() error {
		chunks := s.chunker.Chunk(units)
		if len(chunks) == 0 {
			return fmt.Errorf("%w: document contains no text", domain.ErrCorruptInput)
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		vectors, usage, embedErr := s.embedder.EmbedBatch(ctx, texts)
		if embedErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, embedErr)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("%w: embedding count mismatch", domain.ErrUpstreamUnavailable)
		}

		for i := range chunks {
			chunks[i].Embedding = vectors[i]
			if addErr := index.Add(ctx, chunks[i]); addErr != nil {
				return addErr
			}
		}

		logger.Event("embedding_creation", map[string]any{
			"num_chunks":     len(chunks),
			"total_tokens":   usage.TotalTokens,
			"total_cost_usd": roundCost(usage.CostUSD),
		})
		return nil
	})
	if err != nil {
		index.Close()
		return nil, err
	}

	return index, nil
}

// answerOne runs one question's retrieve/synthesize/reconcile cycle on the
// worker pool. Any failure is caught here and converted into a degraded
// record; one failing question must never abort the batch.
func (s *AnswerService) answerOne(ctx context.Context, index driven.VectorIndex, question string) domain.AnswerRecord {
	var record domain.AnswerRecord
	err := s.pool.Submit(ctx, func() error {
		var cycleErr error
		record, cycleErr = s.answerCycle(ctx, index, question)
		return cycleErr
	})
	if err != nil {
		logger.Error("question %q failed: %v", preview(question, 100), err)
		return domain.AnswerRecord{
			Question:  question,
			Answer:    errorAnswer,
			Citations: []domain.Citation{},
		}
	}
	return record
}

// answerCycle performs retrieval, synthesis and citation reconciliation,
// with one recall escalation when the first pass yields the not-found
// sentinel. The escalated attempt uses a freshly derived configuration;
// the service's own retrieval config is never mutated.
func (s *AnswerService) answerCycle(
	ctx context.Context, index driven.VectorIndex, question string,
) (domain.AnswerRecord, error) {
	synthesis, err := s.retrieveAndSynthesize(ctx, index, question, s.retrieval)
	if err != nil {
		return domain.AnswerRecord{}, err
	}

	if synthesis.Answer == domain.NotFoundAnswer {
		escalated, escErr := s.retrieveAndSynthesize(ctx, index, question, s.retrieval.Escalated())
		if escErr == nil && escalated.Answer != "" && escalated.Answer != domain.NotFoundAnswer {
			synthesis = escalated
		} else if escErr != nil {
			logger.Warn("escalated retry for %q failed: %v", preview(question, 100), escErr)
		}
	}

	answer := synthesis.Answer
	if answer == "" {
		answer = domain.NotFoundAnswer
	}

	citations := Reconcile(answer, synthesis.SourceChunks)
	if citations == nil {
		citations = []domain.Citation{}
	}

	usage := synthesis.Usage
	return domain.AnswerRecord{
		Question:  question,
		Answer:    answer,
		Citations: citations,
		Usage:     &usage,
	}, nil
}

func (s *AnswerService) retrieveAndSynthesize(
	ctx context.Context, index driven.VectorIndex, question string, cfg domain.RetrievalConfig,
) (Synthesis, error) {
	chunks, err := s.retriever.Retrieve(ctx, index, question, cfg)
	if err != nil {
		return Synthesis{}, err
	}
	return s.synthesizer.Synthesize(ctx, question, chunks)
}
