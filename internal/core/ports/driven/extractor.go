package driven

import "context"

// Page is one extracted PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}

// PageExtractor converts a PDF file into per-page text. It is a black-box
// collaborator: the service behind it owns the actual PDF parsing.
type PageExtractor interface {
	// Extract returns the pages of the PDF at path, in page order.
	Extract(ctx context.Context, path string) ([]Page, error)
}
