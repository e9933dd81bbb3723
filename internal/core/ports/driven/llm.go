package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Completion is the explicit result of a model call. Downstream code reads
// named fields instead of probing a loosely-shaped response mapping.
type Completion struct {
	// Text is the generated answer text.
	Text string

	// Usage is the token and cost accounting for this call.
	Usage domain.TokenUsage
}

// LLMService produces grounded completions from a language model.
//
// Implementations classify provider failures: non-2xx responses surface as
// *domain.UpstreamError so domain.IsTransient can drive the retry policy.
// The per-call timeout is owned by the implementation's HTTP client.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini and compatible APIs)
//   - Ollama (local models)
type LLMService interface {
	// Complete generates an answer for a fully constructed prompt.
	Complete(ctx context.Context, prompt string) (Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
