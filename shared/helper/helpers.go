package helper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

var ErrMaxAttempts = errors.New("max attempts reached")

// Retry calls fn until it succeeds, maxAttempts calls were made or ctx is
// done. Between calls it waits delay.Duration(), so the wait grows with
// every failure. delay is reset first; nil uses the library defaults.
// maxAttempts below 1 means 1.
func Retry(ctx context.Context, maxAttempts int, delay *backoff.Backoff, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay == nil {
		delay = &backoff.Backoff{}
	}
	delay.Reset()

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("%w: %d, %w", ErrMaxAttempts, attempt, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry stopped after %d attempts: %w", attempt, errors.Join(context.Cause(ctx), err))
		case <-time.After(delay.Duration()):
		}
	}
}
