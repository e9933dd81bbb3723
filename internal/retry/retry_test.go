package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func fastConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func transientErr() error {
	return &domain.UpstreamError{Provider: "test", StatusCode: 503, Message: "unavailable"}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	r := New(fastConfig())

	attempts := 0
	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return transientErr()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsTransientBudget(t *testing.T) {
	r := New(fastConfig())

	attempts := 0
	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return transientErr()
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestDoFatalErrorShortCircuits(t *testing.T) {
	r := New(fastConfig())

	fatal := &domain.UpstreamError{Provider: "test", StatusCode: 401, Message: "bad key"}
	attempts := 0
	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return fatal
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, fatal, err.(*domain.UpstreamError))
}

func TestDoPlainErrorNotRetried(t *testing.T) {
	r := New(fastConfig())

	attempts := 0
	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("logic bug")
	})

	assert.Equal(t, 1, attempts)
	assert.EqualError(t, err, "logic bug")
}

func TestDoHonoursContextCancellation(t *testing.T) {
	r := New(Config{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(context.Context) error {
		return transientErr()
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	r := New(Config{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second})

	assert.Equal(t, 2*time.Second, r.backoff(1))
	assert.Equal(t, 4*time.Second, r.backoff(2))
	assert.Equal(t, 8*time.Second, r.backoff(3))
	assert.Equal(t, 10*time.Second, r.backoff(4))
}
