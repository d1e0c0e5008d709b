package httpretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutReturnsValue(t *testing.T) {
	got, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestWithTimeoutClassifiesDeadlineExpiry(t *testing.T) {
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithTimeoutPassesThroughParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := WithTimeout(ctx, time.Minute, func(tctx context.Context) (int, error) {
		cancel()
		<-tctx.Done()
		return 0, tctx.Err()
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout, "user cancellation must not be reported as a timeout")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeoutPassesThroughPlainErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := WithTimeout(context.Background(), time.Minute, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithTimeoutCancelsDerivedContextOnReturn(t *testing.T) {
	var captured context.Context
	_, err := WithTimeout(context.Background(), time.Minute, func(ctx context.Context) (int, error) {
		captured = ctx
		return 1, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, captured.Err(), context.Canceled)
}
