package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to attempts times, doubling the delay between failures
// starting from baseDelay. It returns nil on the first success. If the
// context is cancelled while waiting, the context error is returned.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
