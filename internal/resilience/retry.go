package resilience

import (
	"context"
	"time"
)

// MaxBusPublishAttempts bounds the retry loop for BusTransientError
// (spec §7: "retry with exponential backoff up to 5 attempts, then
// dead-letter").
const MaxBusPublishAttempts = 5

// WithBackoff retries fn up to MaxBusPublishAttempts times with
// exponential backoff between attempts (100ms, 200ms, 400ms, 800ms),
// returning the last error if every attempt fails, or ctx.Err() if ctx
// is canceled while waiting to retry.
func WithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := 100 * time.Millisecond
	for attempt := 1; attempt <= MaxBusPublishAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == MaxBusPublishAttempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
