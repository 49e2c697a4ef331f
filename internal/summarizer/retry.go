package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"time"
)

// RetryConfig controls retry behavior of completion calls.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig allows two retries after the first attempt.
//
//nolint:gochecknoglobals // Read-only defaults.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// TransientError marks a failure that may succeed when repeated.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err so RetryDo retries it. A nil err stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}

	return &TransientError{Err: err}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// RetryDo calls fn until it succeeds, fails permanently, or MaxRetries retries
// are spent. Waits grow exponentially and stop early on context cancellation.
func RetryDo[T any](
	ctx context.Context,
	log *slog.Logger,
	rc RetryConfig,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}

		if attempt == rc.MaxRetries {
			break
		}

		wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
		if wait > rc.MaxWait {
			wait = rc.MaxWait
		}

		log.WarnContext(ctx, "Retrying completion call",
			"attempt", attempt+1,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()

			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
