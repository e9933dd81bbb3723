package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.PageExtractor for testing.
type mockExtractor struct {
	pages      []driven.Page
	extractErr error
	calls      int
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]driven.Page, error) {
	m.calls++
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.pages, nil
}

// mockEmbedder implements driven.EmbeddingService for testing. It returns
// a fixed vector per text unless vectors maps specific texts.
type mockEmbedder struct {
	mu       sync.Mutex
	fallback []float32
	vectors  map[string][]float32
	usage    domain.TokenUsage
	embedErr error
	batchErr error
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	return []float32{1, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, domain.TokenUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return nil, domain.TokenUsage{}, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, m.usage, nil
}

func (m *mockEmbedder) Dimensions() int   { return 2 }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockLLM implements driven.LLMService. Responses are consumed in order;
// the last one repeats. Errors are consumed the same way, interleaved
// before responses.
type mockLLM struct {
	mu        sync.Mutex
	responses []driven.Completion
	errs      []error
	calls     int
	prompts   []string
}

func (m *mockLLM) Complete(_ context.Context, prompt string) (driven.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return driven.Completion{}, err
		}
	}

	if len(m.responses) == 0 {
		return driven.Completion{Text: domain.NotFoundAnswer}, nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }

// mockIndex implements driven.VectorIndex over a fixed candidate list.
type mockIndex struct {
	mu         sync.Mutex
	candidates []driven.Candidate
	added      []domain.Chunk
	fetchKs    []int
	candErr    error
	closed     bool
}

func (m *mockIndex) Add(_ context.Context, chunk domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, chunk)
	return nil
}

func (m *mockIndex) Candidates(_ context.Context, _ []float32, fetchK int) ([]driven.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchKs = append(m.fetchKs, fetchK)
	if m.candErr != nil {
		return nil, m.candErr
	}
	if fetchK < len(m.candidates) {
		return m.candidates[:fetchK], nil
	}
	return m.candidates, nil
}

func (m *mockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.added) + len(m.candidates)
}

func (m *mockIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
