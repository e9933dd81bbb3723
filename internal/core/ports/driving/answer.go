package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentUpload describes a saved upload awaiting ingestion.
type DocumentUpload struct {
	// Path is the temporary on-disk location of the saved upload.
	Path string

	// Ext is the lower-cased declared extension (".pdf" or ".json").
	Ext string

	// OriginalName is the filename the user uploaded. Citations use this,
	// never the temporary path.
	OriginalName string
}

// AnswerService answers a batch of questions against a single uploaded
// document. One implementation drives the whole request-scoped pipeline:
// ingest, chunk, index, then retrieve/synthesize/reconcile per question.
type AnswerService interface {
	// AnswerBatch returns exactly one record per distinct question string.
	// Per-question failures are converted to degraded records; the returned
	// error is non-nil only for whole-request failures (ingestion, index
	// build), which occur before any question is processed.
	AnswerBatch(ctx context.Context, doc DocumentUpload, questions []string) (map[string]domain.AnswerRecord, error)
}
