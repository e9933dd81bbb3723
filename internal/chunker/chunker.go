// Package chunker provides a token-aware sliding-window text chunker.
package chunker

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultChunkSize is the default chunk budget in model tokens.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default overlap between consecutive chunks,
// in model tokens.
const DefaultChunkOverlap = 200

// Chunker splits TextUnits into overlapping, bounded-size chunks. Windows
// are measured in model tokens, not characters, so chunk boundaries respect
// the language model's tokenization. Chunking is deterministic: identical
// input always yields an identical chunk sequence.
type Chunker struct {
	tokenizer driven.Tokenizer
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker using the given tokenizer.
func New(tokenizer driven.Tokenizer, opts ...Option) *Chunker {
	c := &Chunker{
		tokenizer: tokenizer,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits the units into chunks. Every chunk derives from exactly one
// TextUnit and inherits its SourceLabel and Page; Index is the ordinal
// position across the whole sequence. Empty units produce no chunks.
func (c *Chunker) Chunk(units []domain.TextUnit) []domain.Chunk {
	var chunks []domain.Chunk

	index := 0
	for _, unit := range units {
		if unit.Content == "" {
			continue
		}

		tokens := c.tokenizer.Encode(unit.Content)
		if len(tokens) == 0 {
			continue
		}

		step := c.chunkSize - c.overlap
		for start := 0; start < len(tokens); start += step {
			end := start + c.chunkSize
			if end > len(tokens) {
				end = len(tokens)
			}

			chunks = append(chunks, domain.Chunk{
				Content:     c.tokenizer.Decode(tokens[start:end]),
				SourceLabel: unit.SourceLabel,
				Page:        unit.Page,
				Index:       index,
			})
			index++

			if end == len(tokens) {
				break
			}
		}
	}

	return chunks
}
