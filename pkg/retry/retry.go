// Package retry re-issues upstream calls that were refused for quota reasons,
// backing off exponentially between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/upstream"
)

// Policy configures Do. The zero value makes a single attempt.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// InitialDelay is the first wait; each later wait doubles it.
	InitialDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Defaults to upstream.IsRateLimited.
	Retryable func(error) bool
	// Sleep waits between attempts. Defaults to Sleep.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

// DefaultPolicy allows two retries, waiting 2s and then 4s.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 2, InitialDelay: 2 * time.Second}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = upstream.IsRateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	retries, delay := p.MaxRetries, p.InitialDelay
	for {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if retries <= 0 || !retryable(err) {
			return zero, err
		}
		logger.Warn("upstream rate limited, backing off",
			zap.Duration("delay", delay),
			zap.Int("retries_left", retries),
			zap.Error(err),
		)
		if serr := sleep(ctx, delay); serr != nil {
			return zero, errors.Join(err, serr)
		}
		retries--
		delay *= 2
	}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
