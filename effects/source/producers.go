package source

import (
	"context"
	"time"
)

// Just emits values synchronously, in order, then completes.
func Just(values ...any) Source {
	return Func(func(ctx context.Context, o Observer) error {
		for _, v := range values {
			if ctx.Err() != nil {
				return nil
			}
			if err := o.Next(v); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
		o.Complete()
		return nil
	})
}

// Empty completes immediately.
func Empty() Source {
	return Func(func(_ context.Context, o Observer) error {
		o.Complete()
		return nil
	})
}

// Never emits nothing and never completes.
func Never() Source {
	return Func(func(context.Context, Observer) error { return nil })
}

// Fail ends the stream with err as soon as it is subscribed.
func Fail(err error) Source {
	return Func(func(_ context.Context, o Observer) error {
		o.Error(err)
		return nil
	})
}

// FromChannel forwards every value received from ch and completes when ch
// is closed. Skipped values do not end the stream.
func FromChannel[T any](ch <-chan T) Source {
	return Func(func(ctx context.Context, o Observer) error {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-ch:
					if !ok {
						o.Complete()
						return
					}
					if err := o.Next(v); err != nil && !skipped(err) {
						fail(ctx, o, err)
						return
					}
				}
			}
		}()
		return nil
	})
}

// Interval emits fn(0), fn(1), ... once per period until the subscription
// is cancelled.
func Interval(period time.Duration, fn func(n int) any) Source {
	return Func(func(ctx context.Context, o Observer) error {
		if period <= 0 {
			return ErrInvalidPeriod
		}

		ticker := time.NewTicker(period)
		go func() {
			defer ticker.Stop()
			for n := 0; ; n++ {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := o.Next(fn(n)); err != nil && !skipped(err) {
						fail(ctx, o, err)
						return
					}
				}
			}
		}()
		return nil
	})
}
