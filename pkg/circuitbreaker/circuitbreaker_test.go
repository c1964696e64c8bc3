package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []State
	b := New("store",
		WithFailureThreshold(3),
		WithTimeout(time.Hour),
		WithOnStateChange(func(_ string, _, to State) { transitions = append(transitions, to) }),
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.Execute(ctx, func(context.Context) error { return errBackend })
		require.ErrorIs(t, err, errBackend)
	}

	assert.True(t, b.IsOpen())
	assert.Equal(t, []State{StateOpen}, transitions)

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsRejected(err))
	assert.False(t, called)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("store", WithFailureThreshold(1), WithTimeout(10*time.Millisecond))
	ctx := context.Background()

	_ = b.Execute(ctx, func(context.Context) error { return errBackend })
	require.Equal(t, StateOpen, b.State())

	require.Eventually(t, func() bool {
		return b.State() == StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	errNotFound := errors.New("not found")
	b := New("store",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, errNotFound) }),
	)

	for i := 0; i < 5; i++ {
		err := b.Execute(context.Background(), func(context.Context) error { return errNotFound })
		require.ErrorIs(t, err, errNotFound)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_ContextCanceledIsNotAFailure(t *testing.T) {
	b := New("store", WithFailureThreshold(1))

	err := b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestCall_ReturnsTypedResult(t *testing.T) {
	b := New("store")

	n, err := Call(context.Background(), b, func(context.Context) (int64, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, "store", b.Name())
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)
}
