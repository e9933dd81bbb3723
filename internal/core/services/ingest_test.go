package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngestPDF(t *testing.T) {
	extractor := &mockExtractor{pages: []driven.Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}}
	ing := NewIngestor(extractor)

	units, err := ing.Ingest(context.Background(), "/tmp/ignored.pdf", ".pdf", "handbook.pdf")
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "first page", units[0].Content)
	assert.Equal(t, "handbook.pdf", units[0].SourceLabel)
	require.NotNil(t, units[0].Page)
	assert.Equal(t, 1, *units[0].Page)
	assert.Equal(t, 2, *units[1].Page)
}

func TestIngestPDFExtractionFailure(t *testing.T) {
	ing := NewIngestor(&mockExtractor{extractErr: errors.New("cannot read")})

	_, err := ing.Ingest(context.Background(), "/tmp/broken.pdf", ".pdf", "broken.pdf")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestIngestJSON(t *testing.T) {
	path := writeTemp(t, "doc.json", `{"policy":"no refunds"}`)
	ing := NewIngestor(&mockExtractor{})

	units, err := ing.Ingest(context.Background(), path, ".json", "doc.json")
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Nil(t, units[0].Page)
	assert.Equal(t, "doc.json", units[0].SourceLabel)
	// Canonical pretty-printed form.
	assert.Equal(t, "{\n  \"policy\": \"no refunds\"\n}", units[0].Content)
}

func TestIngestJSONMalformed(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"policy":`)
	ing := NewIngestor(&mockExtractor{})

	_, err := ing.Ingest(context.Background(), path, ".json", "bad.json")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestIngestUnsupportedExtension(t *testing.T) {
	ing := NewIngestor(&mockExtractor{})

	_, err := ing.Ingest(context.Background(), "/tmp/doc.docx", ".docx", "doc.docx")
	require.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".docx")
}
