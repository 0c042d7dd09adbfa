package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a connection does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would reuse an occupied port.
	ErrConflict = errors.New("port already claimed")

	// ErrReadOnly is returned by PutItems when the adapter cannot load items.
	ErrReadOnly = errors.New("store does not accept item writes")
)

// Conflict returns an ErrConflict describing which port of c is taken.
func Conflict(c inventory.Connection, side string) error {
	switch side {
	case "from":
		return fmt.Errorf("%w: %s %s", ErrConflict, c.FromItemID, c.FromPort)
	default:
		return fmt.Errorf("%w: %s %s", ErrConflict, c.ToItemID, c.ToPort)
	}
}

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Unavailable reports a transport or I/O failure as a retryable
// STORE_UNAVAILABLE error.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeStoreUnavailable, Retryable(err), "%s", op)
}

// RetryPolicy controls [RetryPolicy.Do].
type RetryPolicy struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // first pause; doubles after each failure
}

// DefaultRetryPolicy tries three times, waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Only errors wrapped with Retryable trigger retries.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff retries fn with DefaultRetryPolicy.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultRetryPolicy.Do(ctx, fn)
}
