package store

import (
	"context"
	"time"

	"github.com/matzehuels/flexpos/pkg/errors"
)

// Connection retry defaults for remote backends.
const (
	DefaultConnectAttempts = 3
	DefaultConnectDelay    = 500 * time.Millisecond
)

// retry calls connect up to attempts times, doubling delay after each
// failure. Only STORAGE_ERROR failures are retried; configuration errors
// are returned immediately. It returns ctx.Err() if ctx ends while waiting.
func retry[T any](ctx context.Context, attempts int, delay time.Duration, connect func() (T, error)) (T, error) {
	attempts = max(attempts, 1)
	var (
		zero    T
		lastErr error
	)
	for i := range attempts {
		v, err := connect()
		if err == nil {
			return v, nil
		}
		if lastErr = err; !errors.Is(err, errors.ErrCodeStorage) {
			return zero, err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return zero, lastErr
}
