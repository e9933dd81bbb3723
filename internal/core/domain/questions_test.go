package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestions(t *testing.T) {
	t.Run("trims and drops blanks", func(t *testing.T) {
		got, err := NormalizeQuestions([]string{"  What is the policy?  ", "", "   ", "Who signs?"})
		require.NoError(t, err)
		assert.Equal(t, []string{"What is the policy?", "Who signs?"}, got)
	})

	t.Run("all blank fails", func(t *testing.T) {
		_, err := NormalizeQuestions([]string{"", "  "})
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("empty list fails", func(t *testing.T) {
		_, err := NormalizeQuestions(nil)
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("over limit fails with limit in message", func(t *testing.T) {
		raw := make([]string, MaxQuestions+1)
		for i := range raw {
			raw[i] = "q"
		}
		_, err := NormalizeQuestions(raw)
		require.ErrorIs(t, err, ErrTooManyQuestions)
		assert.Contains(t, err.Error(), "50")
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		got, err := NormalizeQuestions([]string{"same?", "same?"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("input slice untouched", func(t *testing.T) {
		raw := []string{"  padded  "}
		_, err := NormalizeQuestions(raw)
		require.NoError(t, err)
		assert.Equal(t, "  padded  ", raw[0])
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &UpstreamError{Provider: "openai", StatusCode: 429}, true},
		{"request timeout", &UpstreamError{Provider: "openai", StatusCode: 408}, true},
		{"server error", &UpstreamError{Provider: "openai", StatusCode: 503}, true},
		{"auth failure", &UpstreamError{Provider: "openai", StatusCode: 401}, false},
		{"bad request", &UpstreamError{Provider: "openai", StatusCode: 400}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped upstream", fmt.Errorf("call: %w", &UpstreamError{StatusCode: 500}), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{Provider: "openai", StatusCode: 429, Message: "slow down"}
	assert.True(t, strings.Contains(err.Error(), "openai"))
	assert.True(t, strings.Contains(err.Error(), "429"))
}
