package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. The transport layer maps
// them to status codes at the outermost boundary; core code never raises
// HTTP-specific errors.
var (
	// ErrUnsupportedFormat indicates a document extension outside {pdf, json}.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptInput indicates the document content could not be parsed
	// (malformed JSON, unreadable PDF). Never retried.
	ErrCorruptInput = errors.New("corrupt or unreadable document")

	// ErrUpstreamUnavailable indicates a bulk upstream call failed and the
	// whole request was aborted (e.g. index-time embedding failure).
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrQuestionsJSON indicates the questions file is not valid JSON.
	ErrQuestionsJSON = errors.New(`invalid questions JSON: provide a JSON array or {"questions": [...]} object`)

	// ErrQuestionsShape indicates valid JSON with the wrong shape.
	ErrQuestionsShape = errors.New("questions must be a list of strings")

	// ErrNoQuestions indicates zero non-blank questions after trimming.
	ErrNoQuestions = errors.New("no questions provided")

	// ErrTooManyQuestions indicates the question count exceeds MaxQuestions.
	ErrTooManyQuestions = errors.New("too many questions")

	// ErrFileTooLarge indicates an upload exceeds its size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// UpstreamError is a classified failure from a model or embedding provider.
// Adapters construct it from non-2xx responses so callers can decide on
// retry without depending on provider response shapes.
type UpstreamError struct {
	// Provider names the upstream service ("openai", "ollama", ...).
	Provider string

	// StatusCode is the HTTP status returned by the provider.
	StatusCode int

	// Message is the provider's error message, when available.
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Transient reports whether the failure is worth retrying: request timeout,
// rate limiting, or a server-side error. Client errors (4xx, including
// authentication failures) are fatal.
func (e *UpstreamError) Transient() bool {
	switch {
	case e.StatusCode == 408 || e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsTransient classifies an error as retryable. Timeouts, connection
// failures, rate limits and upstream server errors are transient; anything
// else (auth failures, malformed input) short-circuits immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection-level failures (refused, reset, DNS) surface as OpErrors.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
