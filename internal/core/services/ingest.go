package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ingestor converts a saved upload into page-tagged TextUnits.
// Exactly two formats are supported: PDF (via the external page extractor)
// and JSON (canonicalised to pretty-printed text).
type Ingestor struct {
	extractor driven.PageExtractor
}

// NewIngestor creates an ingestor backed by the given page extractor.
func NewIngestor(extractor driven.PageExtractor) *Ingestor {
	return &Ingestor{extractor: extractor}
}

// Ingest reads the document at path and returns its TextUnits. The
// sourceLabel is the original uploaded filename; citations must reference
// the name the user recognises, not the temporary storage path.
//
// Failures are client errors, never retried: ErrUnsupportedFormat for an
// unknown extension, ErrCorruptInput when the content cannot be parsed.
func (s *Ingestor) Ingest(ctx context.Context, path, ext, sourceLabel string) ([]domain.TextUnit, error) {
	switch ext {
	case ".pdf":
		return s.ingestPDF(ctx, path, sourceLabel)
	case ".json":
		return s.ingestJSON(path, sourceLabel)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
}

func (s *Ingestor) ingestPDF(ctx context.Context, path, sourceLabel string) ([]domain.TextUnit, error) {
	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("pdf extraction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	units := make([]domain.TextUnit, 0, len(pages))
	for _, p := range pages {
		page := p.Number
		units = append(units, domain.TextUnit{
			Content:     p.Text,
			SourceLabel: sourceLabel,
			Page:        &page,
		})
	}

	logger.Debug("ingested %d pdf pages from %s", len(units), sourceLabel)
	return units, nil
}

// ingestJSON parses the document and re-serialises it to a canonical
// pretty-printed form, emitting a single unpaginated TextUnit.
func (s *Ingestor) ingestJSON(path, sourceLabel string) ([]domain.TextUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON", domain.ErrCorruptInput)
	}

	canonical, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	return []domain.TextUnit{{
		Content:     string(canonical),
		SourceLabel: sourceLabel,
	}}, nil
}
