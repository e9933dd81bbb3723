// Package pdfservice provides a page extractor adapter backed by an
// external PDF extraction service. PDF parsing needs mature native
// libraries, so extraction runs in a sidecar process and this adapter
// speaks HTTP to it.
package pdfservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultServiceURL = "http://localhost:8081"
	DefaultTimeout    = 60 * time.Second
)

// Config holds configuration for the extraction service client.
type Config struct {
	// ServiceURL is the extraction service base URL
	// (default: http://localhost:8081).
	ServiceURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Extractor extracts per-page text from PDF files via the sidecar service.
type Extractor struct {
	serviceURL string
	client     *http.Client
}

// extractResponse is the extraction service response format.
type extractResponse struct {
	Pages []struct {
		Number int    `json:"number"`
		Text   string `json:"text"`
	} `json:"pages"`
	Error string `json:"error,omitempty"`
}

// New creates a new extraction service client.
func New(cfg Config) *Extractor {
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = DefaultServiceURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		serviceURL: cfg.ServiceURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Extract reads the PDF at path and returns its pages in document order.
// Page numbers are 1-based as reported by the service.
func (e *Extractor) Extract(ctx context.Context, path string) ([]driven.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.serviceURL+"/extract", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("extraction failed: %s", result.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service error (status %d): %s", resp.StatusCode, string(body))
	}

	pages := make([]driven.Page, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = driven.Page{Number: p.Number, Text: p.Text}
	}
	return pages, nil
}

// Healthy reports whether the extraction service is reachable.
func (e *Extractor) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serviceURL+"/health", http.NoBody)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
