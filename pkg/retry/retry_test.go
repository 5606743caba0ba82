package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/upstream"
)

type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func rateLimited() error {
	return &upstream.Error{Provider: "test", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}
}

func TestDoSucceedsAfterTwoRateLimits(t *testing.T) {
	rec := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep

	calls := 0
	got, err := Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", rateLimited()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	rec := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep

	calls := 0
	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, rateLimited()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.delays, 2)
	assert.Equal(t, models.ErrorRateLimit, upstream.Classify(err))
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	rec := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep

	boom := &upstream.Error{Provider: "test", StatusCode: http.StatusInternalServerError, Err: errors.New("boom")}
	calls := 0
	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDoZeroRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{}, func(context.Context) (int, error) {
		calls++
		return 0, rateLimited()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxRetries: 2, InitialDelay: time.Hour}
	calls := 0
	_, err := Do(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, rateLimited()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, upstream.IsRateLimited(err))
}

func TestSleepWaits(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
