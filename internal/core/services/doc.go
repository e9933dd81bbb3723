// Package services implements the driving port interfaces.
// Services contain the request-scoped RAG pipeline logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond concurrency
// helpers.
package services
