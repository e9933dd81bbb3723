// Package tiktoken provides a tokenizer adapter backed by the tiktoken BPE
// encodings, so chunk budgets line up with what the embedding and chat
// models actually count.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the encoding shared by the gpt-4o and
// text-embedding-3 model families.
const DefaultEncoding = "cl100k_base"

// Tokenizer encodes and decodes text with a fixed BPE encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer for the named encoding. An empty name selects
// DefaultEncoding.
func New(encodingName string) (*Tokenizer, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// NewForModel creates a tokenizer matching the named model's encoding.
func NewForModel(model string) (*Tokenizer, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: encoding for model %q: %w", model, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// Encode converts text to token IDs.
func (t *Tokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode converts token IDs back to text.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}
