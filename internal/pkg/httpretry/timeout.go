package httpretry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks a call that was aborted because its own deadline
// expired (as opposed to the caller's context being canceled). Callers
// can classify with errors.Is(err, ErrTimeout).
var ErrTimeout = errors.New("httpretry: call timed out")

// WithTimeout runs fn under a derived context with the given deadline
// and translates a deadline expiry into ErrTimeout. Cancellation of the
// parent context is passed through untouched so user-initiated aborts
// are never misreported as timeouts.
//
// The derived context is canceled on return, which aborts any in-flight
// HTTP request issued with it.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(tctx)
	if err == nil {
		return v, nil
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		var zero T
		return zero, fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, err)
	}
	return v, err
}
