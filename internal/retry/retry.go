// Package retry wraps a fallible operation with bounded retries and
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PermanentError marks a failure that must not be retried, such as a source
// reporting that transcripts are disabled. Do returns it unwrapped to the
// caller immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do will not retry it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Do runs op up to maxRetries+1 times. After each failed attempt it waits the
// current delay, then doubles it. Permanent errors and context cancellation
// abort immediately; cancellation is only observed between attempts, never
// mid-attempt. On exhaustion the returned error wraps the last failure.
func Do(ctx context.Context, maxRetries int, initialDelay time.Duration, op func(ctx context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	delay := initialDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if IsPermanent(lastErr) {
			return lastErr
		}

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}
