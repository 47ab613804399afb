package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }

func ok(context.Context) error { return nil }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(t *testing.T, cfg Config) (*Breaker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New(cfg)
	b.SetClock(clock.now)
	return b, clock
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(t, Config{FailureThreshold: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(t, Config{FailureThreshold: 2})

	require.Error(t, b.Execute(ctx, fail))
	require.NoError(t, b.Execute(ctx, ok))
	require.Error(t, b.Execute(ctx, fail))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	ctx := context.Background()
	var transitions []string
	b, clock := newTestBreaker(t, Config{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Cooldown:         time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	require.Error(t, b.Execute(ctx, fail))
	require.Equal(t, StateOpen, b.State())

	clock.advance(30 * time.Second)
	assert.ErrorIs(t, b.Execute(ctx, ok), ErrOpen)

	clock.advance(30 * time.Second)
	require.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	b, clock := newTestBreaker(t, Config{FailureThreshold: 1, Cooldown: time.Minute})

	require.Error(t, b.Execute(ctx, fail))
	clock.advance(time.Minute)
	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(ctx, ok), ErrOpen)
}

func TestBreaker_HalfOpenLimitsConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	b, clock := newTestBreaker(t, Config{FailureThreshold: 1, Cooldown: time.Minute, HalfOpenMaxCalls: 1})

	require.Error(t, b.Execute(ctx, fail))
	clock.advance(time.Minute)

	err := b.Execute(ctx, func(ctx context.Context) error {
		// 第一个探测调用还在进行时，第二个被拒绝
		assert.ErrorIs(t, b.Execute(ctx, ok), ErrOpen)
		return nil
	})
	require.NoError(t, err)
}

func TestBreaker_CanceledDoesNotCount(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(t, Config{FailureThreshold: 1})

	err := b.Execute(ctx, func(context.Context) error { return context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(t, Config{FailureThreshold: 1})

	require.Error(t, b.Execute(ctx, fail))
	require.Equal(t, StateOpen, b.State())
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Execute(ctx, ok))
}
