package pdfservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0600))
	return path
}

func TestExtractReturnsPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"number": 1, "text": "first page"},
				{"number": 2, "text": "second page"},
			},
		})
	}))
	defer server.Close()

	ext := New(Config{ServiceURL: server.URL})
	pages, err := ext.Extract(context.Background(), writePDF(t))
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "first page", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
}

func TestExtractServiceReportedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "encrypted document"})
	}))
	defer server.Close()

	ext := New(Config{ServiceURL: server.URL})
	_, err := ext.Extract(context.Background(), writePDF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encrypted document")
}

func TestExtractMissingFile(t *testing.T) {
	ext := New(Config{ServiceURL: "http://localhost:1"})
	_, err := ext.Extract(context.Background(), "/does/not/exist.pdf")
	assert.Error(t, err)
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ext := New(Config{ServiceURL: server.URL})
	assert.True(t, ext.Healthy(context.Background()))
}

func TestDefaultServiceURL(t *testing.T) {
	ext := New(Config{})
	assert.Equal(t, DefaultServiceURL, ext.serviceURL)
}
