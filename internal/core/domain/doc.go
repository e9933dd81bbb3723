// Package domain defines the core business entities for the document Q&A
// pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TextUnit: A page-tagged slice of ingested document text
//   - Chunk: A bounded retrieval unit derived from a TextUnit
//   - AnswerRecord: The per-question result returned to the caller
//   - Citation: A (source, page) reference backing an answer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
