package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return svc
}

func TestEmbedBatchOrdersByIndexAndReportsUsage(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Data deliberately out of order; the adapter must reorder by index.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0, 1}, "index": 1},
				{"embedding": []float64{1, 0}, "index": 0},
			},
			"usage": map[string]int{
				"prompt_tokens": 1_000_000,
				"total_tokens":  1_000_000,
			},
		})
	})

	embeddings, usage, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0}, embeddings[0])
	assert.Equal(t, []float32{0, 1}, embeddings[1])

	assert.Equal(t, 1_000_000, usage.TotalTokens)
	// text-embedding-3-small: $0.02 per million tokens.
	assert.InDelta(t, 0.02, usage.CostUSD, 1e-9)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty input")
	})

	embeddings, usage, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
	assert.Zero(t, usage.TotalTokens)
}

func TestEmbedBatchServerErrorIsTransient(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "overloaded"},
		})
	})

	_, _, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.True(t, domain.IsTransient(err))
}

func TestEmbedDelegatesToBatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.5, 0.5}, "index": 0},
			},
			"usage": map[string]int{"prompt_tokens": 3, "total_tokens": 3},
		})
	})

	embedding, err := svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, embedding)
}

func TestDimensionsDefaultPerModel(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
}
