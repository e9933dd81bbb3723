package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/workerpool"
)

// runeTokenizer treats every rune as one token. Round-trips exactly, which
// is all the chunker needs in tests.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

func (runeTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, tok := range tokens {
		runes[i] = rune(tok)
	}
	return string(runes)
}

func newTestAnswerService(t *testing.T, extractor driven.PageExtractor, llm driven.LLMService) *AnswerService {
	t.Helper()

	pool := workerpool.New(4)
	t.Cleanup(pool.Close)

	embedder := &mockEmbedder{}
	return NewAnswerService(
		NewIngestor(extractor),
		chunker.New(runeTokenizer{}, chunker.WithChunkSize(2000), chunker.WithOverlap(0)),
		embedder,
		NewRetriever(embedder),
		NewSynthesizer(llm, nil, fastRetrier(), 0),
		func() driven.VectorIndex { return memory.New() },
		pool,
		domain.RetrievalConfig{},
	)
}

func pdfUpload() driving.DocumentUpload {
	return driving.DocumentUpload{Path: "/tmp/ignored.pdf", Ext: ".pdf", OriginalName: "handbook.pdf"}
}

func twoPageExtractor() *mockExtractor {
	return &mockExtractor{pages: []driven.Page{
		{Number: 1, Text: "Employees accrue 20 vacation days per year."},
		{Number: 2, Text: "Refund requests require manager approval."},
	}}
}

func TestAnswerBatchHappyPath(t *testing.T) {
	llm := &mockLLM{responses: []driven.Completion{{
		Text:  "Manager approval is required. Evidence: page 2",
		Usage: domain.TokenUsage{PromptTokens: 80, CompletionTokens: 12, TotalTokens: 92, CostUSD: 0.0001},
	}}}
	svc := newTestAnswerService(t, twoPageExtractor(), llm)

	results, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"Who approves refunds?"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	record := results["Who approves refunds?"]
	assert.Equal(t, "Who approves refunds?", record.Question)
	assert.Equal(t, "Manager approval is required. Evidence: page 2", record.Answer)

	require.Len(t, record.Citations, 1)
	assert.Equal(t, "handbook.pdf", record.Citations[0].Source)
	require.NotNil(t, record.Citations[0].Page)
	assert.Equal(t, 2, *record.Citations[0].Page)

	require.NotNil(t, record.Usage)
	assert.Equal(t, 92, record.Usage.TotalTokens)
}

func TestAnswerBatchAdoptsEscalatedAnswer(t *testing.T) {
	llm := &mockLLM{responses: []driven.Completion{
		{Text: domain.NotFoundAnswer},
		{Text: "No refunds are allowed."},
	}}
	svc := newTestAnswerService(t, twoPageExtractor(), llm)

	results, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"Are refunds allowed?"})
	require.NoError(t, err)

	record := results["Are refunds allowed?"]
	assert.Equal(t, "No refunds are allowed.", record.Answer)
	assert.Equal(t, 2, llm.calls)
}

func TestAnswerBatchKeepsSentinelWhenEscalationAlsoMisses(t *testing.T) {
	llm := &mockLLM{responses: []driven.Completion{{Text: domain.NotFoundAnswer}}}
	svc := newTestAnswerService(t, twoPageExtractor(), llm)

	results, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"What is the dress code?"})
	require.NoError(t, err)

	record := results["What is the dress code?"]
	assert.Equal(t, domain.NotFoundAnswer, record.Answer)
	assert.Equal(t, 2, llm.calls)
	// Sentinel answers still carry their retrieval provenance.
	assert.NotEmpty(t, record.Citations)
}

func TestAnswerBatchIsolatesQuestionFailure(t *testing.T) {
	llm := &mockLLM{
		errs: []error{&domain.UpstreamError{Provider: "openai", StatusCode: 401, Message: "bad key"}},
	}
	svc := newTestAnswerService(t, twoPageExtractor(), llm)

	results, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"q"})
	require.NoError(t, err, "a failing question must not fail the batch")

	record := results["q"]
	assert.Equal(t, errorAnswer, record.Answer)
	require.NotNil(t, record.Citations)
	assert.Empty(t, record.Citations)
	assert.Nil(t, record.Usage)
}

func TestAnswerBatchDuplicateQuestionsCollapseInOutput(t *testing.T) {
	llm := &mockLLM{responses: []driven.Completion{{Text: "Twenty days."}}}
	svc := newTestAnswerService(t, twoPageExtractor(), llm)

	results, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"How many days?", "How many days?"})
	require.NoError(t, err)

	// Both duplicates are processed, but the map keys by question text.
	assert.Len(t, results, 1)
	assert.Equal(t, 2, llm.calls)
}

func TestAnswerBatchAbortsOnIngestFailure(t *testing.T) {
	extractor := &mockExtractor{extractErr: assert.AnError}
	svc := newTestAnswerService(t, extractor, &mockLLM{})

	_, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"q"})
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestAnswerBatchAbortsOnBulkEmbeddingFailure(t *testing.T) {
	pool := workerpool.New(2)
	t.Cleanup(pool.Close)

	embedder := &mockEmbedder{batchErr: assert.AnError}
	llm := &mockLLM{}
	svc := NewAnswerService(
		NewIngestor(twoPageExtractor()),
		chunker.New(runeTokenizer{}),
		embedder,
		NewRetriever(embedder),
		NewSynthesizer(llm, nil, fastRetrier(), 0),
		func() driven.VectorIndex { return memory.New() },
		pool,
		domain.RetrievalConfig{},
	)

	_, err := svc.AnswerBatch(context.Background(), pdfUpload(), []string{"q"})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Zero(t, llm.calls, "no question work after an index build failure")
}
