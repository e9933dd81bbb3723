// Package retry wraps upstream model calls with bounded retry and
// exponential backoff for transient failures.
package retry

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
	DefaultMaxDelay    = 10 * time.Second
)

// Config holds the retry policy.
type Config struct {
	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt; each further wait
	// doubles it.
	BaseDelay time.Duration

	// MaxDelay caps the backoff wait.
	MaxDelay time.Duration
}

// DefaultConfig returns the standard policy: 3 attempts, backoff doubling
// from 2s capped at 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Retrier executes functions under the retry policy.
type Retrier struct {
	cfg Config
}

// New creates a retrier, filling zero config fields with defaults.
func New(cfg Config) *Retrier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &Retrier{cfg: cfg}
}

// Do runs fn until it succeeds, fails with a non-transient error, or the
// attempt budget is exhausted. The last error is returned as-is; nothing
// is suppressed or rewrapped.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !domain.IsTransient(err) {
			logger.Debug("attempt %d failed with non-transient error: %v", attempt, err)
			return err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		logger.Warn("attempt %d failed (transient): %v; retrying in %s", attempt, err, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// backoff returns the wait after the given attempt number.
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := r.cfg.BaseDelay << (attempt - 1)
	if delay > r.cfg.MaxDelay || delay <= 0 {
		delay = r.cfg.MaxDelay
	}
	return delay
}
