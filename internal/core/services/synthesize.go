package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/retry"
)

// DefaultCallTimeout bounds a single model invocation. Exceeding it is a
// transient failure eligible for retry.
const DefaultCallTimeout = 30 * time.Second

// defaultGroundedQAPrompt is the fallback prompt when no PromptStore is
// configured. The not-found sentence must stay byte-identical to
// domain.NotFoundAnswer; the orchestrator compares against it.
const defaultGroundedQAPrompt = `You are a compliance assistant. Answer ONLY using the provided context.

Rules:
- If the answer is explicitly stated in the context, answer it.
- If the context contains partial information, answer what is known and list missing items under "Missing:".
- If the answer is NOT in the context, respond exactly: "Not found in the provided document."
- Always include an "Evidence:" section with up to 2 short excerpts (max 25 words each) copied from the context,
  and include the page number shown in the context labels.

Context:
%s

Question:
%s

Answer:`

// defaultContextLabelPrompt formats one retrieved chunk inside the context
// block, labelling it with its provenance so the model can cite pages.
const defaultContextLabelPrompt = "(source=%s, page=%s)\n%s"

// Synthesis is the structured result of one grounded model call.
type Synthesis struct {
	// Answer is the trimmed answer text.
	Answer string

	// SourceChunks are the retrieved chunks the prompt embedded, in
	// retrieval order. The reconciler cross-references these.
	SourceChunks []domain.Chunk

	// Usage is the accounting for the successful call.
	Usage domain.TokenUsage
}

// Synthesizer builds grounded prompts and invokes the language model
// through the resilient call wrapper.
type Synthesizer struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	retrier     *retry.Retrier
	callTimeout time.Duration
}

// NewSynthesizer creates a synthesizer. The prompt store is optional;
// without one the embedded default templates are used.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore, retrier *retry.Retrier, callTimeout time.Duration) *Synthesizer {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Synthesizer{
		llm:         llm,
		prompts:     prompts,
		retrier:     retrier,
		callTimeout: callTimeout,
	}
}

// Synthesize answers the question from the retrieved chunks. The model
// call is retried on transient failures; each successful attempt logs an
// llm_call event with its token usage and cost. The structural contract of
// the answer (sentinel, Missing:, Evidence:) is a textual convention the
// model may not perfectly follow - downstream parsing tolerates that.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []domain.Chunk) (Synthesis, error) {
	prompt := s.buildPrompt(question, chunks)

	var completion driven.Completion
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		result, err := s.llm.Complete(callCtx, prompt)
		if err != nil {
			return err
		}
		completion = result

		logger.Event("llm_call", map[string]any{
			"question_preview":  preview(question, 100),
			"model":             s.llm.ModelName(),
			"prompt_tokens":     result.Usage.PromptTokens,
			"completion_tokens": result.Usage.CompletionTokens,
			"total_tokens":      result.Usage.TotalTokens,
			"total_cost_usd":    roundCost(result.Usage.CostUSD),
		})
		return nil
	})
	if err != nil {
		return Synthesis{}, err
	}

	return Synthesis{
		Answer:       strings.TrimSpace(completion.Text),
		SourceChunks: chunks,
		Usage:        completion.Usage,
	}, nil
}

// buildPrompt renders each chunk with its provenance label and embeds the
// context block and question into the instruction template.
func (s *Synthesizer) buildPrompt(question string, chunks []domain.Chunk) string {
	labelTemplate := s.loadPrompt(driven.PromptContextLabel, defaultContextLabelPrompt)

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		page := "none"
		if chunk.Page != nil {
			page = fmt.Sprintf("%d", *chunk.Page)
		}
		parts[i] = fmt.Sprintf(labelTemplate, chunk.SourceLabel, page, chunk.Content)
	}

	qaTemplate := s.loadPrompt(driven.PromptGroundedQA, defaultGroundedQAPrompt)
	return fmt.Sprintf(qaTemplate, strings.Join(parts, "\n\n"), question)
}

// loadPrompt loads a prompt from the store, falling back to the default if
// unavailable.
func (s *Synthesizer) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

func roundCost(cost float64) float64 {
	return math.Round(cost*1e6) / 1e6
}
