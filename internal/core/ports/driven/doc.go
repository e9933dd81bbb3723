// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LLMService: Grounded answer generation with token accounting
//   - EmbeddingService: Vector embeddings for chunks and questions
//   - PageExtractor: Black-box PDF page-to-text conversion
//   - VectorIndex: Request-scoped similarity search over chunk vectors
//   - Tokenizer: Model-token encoding for chunk windowing
//
// # Supporting Interfaces
//
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
