package domain

// TextUnit is a page-tagged slice of ingested document text.
// PDF ingestion produces one TextUnit per extracted page; JSON ingestion
// produces a single TextUnit covering the whole document.
// A TextUnit is immutable once created.
type TextUnit struct {
	// Content is the extracted text.
	Content string

	// SourceLabel is the name citations refer to. This is the original
	// uploaded filename, never a temporary storage path.
	SourceLabel string

	// Page is the 1-based page number, or nil for unpaginated sources (JSON).
	Page *int
}

// Chunk is a bounded retrieval unit derived from exactly one TextUnit.
// Chunks never span TextUnits, so a page boundary is never merged into
// its neighbour and citations stay page-accurate.
type Chunk struct {
	// Content is the chunk text. Its length is bounded by the chunker's
	// token budget.
	Content string

	// SourceLabel is inherited from the originating TextUnit.
	SourceLabel string

	// Page is inherited from the originating TextUnit.
	Page *int

	// Index is the ordinal position across the whole chunk sequence.
	Index int

	// Embedding is the vector representation, populated during index build.
	Embedding []float32
}
