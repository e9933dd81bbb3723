package services

import (
	"regexp"
	"strconv"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// pagePattern matches page references the model writes into answers:
// "page 48", "page=48", "(page 48)", "page= 48", case-insensitive.
var pagePattern = regexp.MustCompile(`(?i)\bpage\s*=?\s*(\d+)\b`)

// PagesMentioned extracts the set of page numbers referenced in the answer
// text.
func PagesMentioned(answer string) map[int]struct{} {
	pages := make(map[int]struct{})
	for _, m := range pagePattern.FindAllStringSubmatch(answer, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			pages[n] = struct{}{}
		}
	}
	return pages
}

// Reconcile cross-references pages asserted in the answer text against the
// retrieved chunks, producing a deduplicated citation list capped at
// domain.MaxCitations.
//
// When the answer mentions pages, only chunks on those pages are cited.
// If that filter removes everything (the model cited pages absent from
// retrieval, or mentioned no usable pages), the fallback re-runs without
// the page filter so the caller always gets some citation when source
// material exists.
func Reconcile(answer string, sources []domain.Chunk) []domain.Citation {
	mentioned := PagesMentioned(answer)

	citations := collectCitations(sources, mentioned)
	if len(citations) == 0 {
		citations = collectCitations(sources, nil)
	}
	return citations
}

// collectCitations deduplicates (source, page) pairs in first-seen order,
// optionally keeping only chunks whose page is in the mentioned set.
func collectCitations(sources []domain.Chunk, mentioned map[int]struct{}) []domain.Citation {
	type key struct {
		source string
		page   int
		paged  bool
	}

	seen := make(map[key]struct{})
	var citations []domain.Citation

	for _, chunk := range sources {
		if len(mentioned) > 0 && chunk.Page != nil {
			if _, ok := mentioned[*chunk.Page]; !ok {
				continue
			}
		}

		k := key{source: chunk.SourceLabel}
		if chunk.Page != nil {
			k.page = *chunk.Page
			k.paged = true
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		citations = append(citations, domain.Citation{Source: chunk.SourceLabel, Page: chunk.Page})
		if len(citations) == domain.MaxCitations {
			break
		}
	}

	return citations
}
