package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

// TimeoutError reports a backend operation that produced no result within
// its limit. It matches both context.DeadlineExceeded and
// apperrors.ErrTimeout.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no result after %v", e.Op, e.Limit)
}

func (e *TimeoutError) Unwrap() []error {
	return []error{context.DeadlineExceeded, apperrors.ErrTimeout}
}

// WithTimeout runs fn under a context that expires after limit. If fn has
// not returned by then, WithTimeout returns a *TimeoutError naming op and
// leaves fn to observe its cancelled context. A limit of zero or less runs
// fn directly.
func WithTimeout(ctx context.Context, limit time.Duration, op string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	opCtx, cancel := context.WithTimeoutCause(ctx, limit, &TimeoutError{Op: op, Limit: limit})
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- fn(opCtx) }()

	select {
	case err := <-result:
		if err != nil && opCtx.Err() != nil {
			return expired(opCtx, op)
		}
		return err
	case <-opCtx.Done():
		return expired(opCtx, op)
	}
}

func expired(ctx context.Context, op string) error {
	cause := context.Cause(ctx)
	var te *TimeoutError
	if errors.As(cause, &te) {
		return te
	}
	return fmt.Errorf("%s: %w", op, cause)
}
