package domain

// NotFoundAnswer is the exact sentinel the model is instructed to return
// when the supplied context does not support an answer. The orchestrator
// compares against it verbatim to decide on recall escalation.
const NotFoundAnswer = "Not found in the provided document."

// MaxCitations caps the reconciled citation list per answer.
const MaxCitations = 4

// Citation is a (source, page) reference backing an answer.
// Page is nil for unpaginated sources and serialises as JSON null.
type Citation struct {
	Source string `json:"source"`
	Page   *int   `json:"page"`
}

// TokenUsage accounts for a model call. Costs are in US dollars.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CostUSD += other.CostUSD
}

// AnswerRecord is the terminal per-question artifact.
type AnswerRecord struct {
	// Question is the question text as received.
	Question string

	// Answer is the grounded answer text, the not-found sentinel, or an
	// error-prefixed placeholder when processing failed.
	Answer string

	// Citations is the reconciled, deduplicated citation list, capped at
	// MaxCitations. Empty for failed questions.
	Citations []Citation

	// Usage is the accumulated token accounting for this question, when
	// the model call succeeded.
	Usage *TokenUsage
}

// RetrievalConfig is an immutable retrieval parameter set. The escalated
// retry constructs a new value rather than mutating a shared one, so
// widened parameters never bleed into subsequent questions.
type RetrievalConfig struct {
	// K is the number of chunks selected for the prompt.
	K int

	// FetchK is the size of the candidate pool MMR selects from.
	FetchK int

	// Lambda balances relevance against diversity in MMR selection.
	// 1.0 is pure relevance, 0.0 pure diversity.
	Lambda float64
}

// DefaultRetrievalConfig returns the first-pass retrieval parameters.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{K: 10, FetchK: 25, Lambda: 0.7}
}

// Escalated derives the widened configuration used for the one recall
// escalation pass after a not-found answer. The receiver is unchanged.
func (c RetrievalConfig) Escalated() RetrievalConfig {
	k := c.K * 2
	if k < 16 {
		k = 16
	}
	fetchK := c.FetchK * 2
	if fetchK < 80 {
		fetchK = 80
	}
	return RetrievalConfig{K: k, FetchK: fetchK, Lambda: c.Lambda}
}
