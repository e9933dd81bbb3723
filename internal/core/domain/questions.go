package domain

import (
	"fmt"
	"strings"
)

// MaxQuestions bounds the question batch size. There is no global request
// deadline, so this is the caller's only latency lever.
const MaxQuestions = 50

// NormalizeQuestions trims and filters an already shape-validated question
// list, then enforces the batch limit. The input slice is not modified.
//
// Duplicate question strings are kept: each is processed, and the result
// map keyed by question text collapses them last-write-wins. That is a
// documented limitation, not something this layer silently fixes.
func NormalizeQuestions(raw []string) ([]string, error) {
	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(questions) > MaxQuestions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyQuestions, MaxQuestions)
	}

	return questions, nil
}
