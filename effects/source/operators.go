package source

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/on-the-ground/effect_ive_dispatch/shared/orderedbuffer"
)

// Map transforms every value of src with fn. A value that is not a T ends
// the stream with ErrUnexpectedType.
func Map[T any, R any](src Source, fn func(T) R) Source {
	return Func(func(ctx context.Context, o Observer) error {
		return src.Subscribe(ctx, Funcs{
			OnNext: func(v any) error {
				val, err := typed[T](v)
				if err != nil {
					return err
				}
				return o.Next(fn(val))
			},
			OnError:    o.Error,
			OnComplete: o.Complete,
		})
	})
}

// Filter forwards only the values of src for which predicate holds.
func Filter[T any](src Source, predicate func(T) bool) Source {
	return Func(func(ctx context.Context, o Observer) error {
		return src.Subscribe(ctx, Funcs{
			OnNext: func(v any) error {
				val, err := typed[T](v)
				if err != nil {
					return err
				}
				if !predicate(val) {
					return nil
				}
				return o.Next(val)
			},
			OnError:    o.Error,
			OnComplete: o.Complete,
		})
	})
}

// Merge interleaves the values of every source. It completes once all of
// them have completed and fails as soon as one of them fails, cancelling
// the rest.
func Merge(sources ...Source) Source {
	return Func(func(ctx context.Context, o Observer) error {
		if len(sources) == 0 {
			o.Complete()
			return nil
		}

		ctx, cancel := context.WithCancel(ctx)
		var (
			terminal  sync.Once
			remaining atomic.Int64
		)
		remaining.Store(int64(len(sources)))

		inner := Funcs{
			OnNext: func(v any) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return o.Next(v)
			},
			OnError: func(err error) {
				terminal.Do(func() {
					cancel()
					o.Error(err)
				})
			},
			OnComplete: func() {
				if remaining.Add(-1) == 0 {
					terminal.Do(func() {
						cancel()
						o.Complete()
					})
				}
			},
		}

		for _, src := range sources {
			if err := src.Subscribe(ctx, inner); err != nil {
				cancel()
				return err
			}
		}
		return nil
	})
}

// OrderBy sorts the values of src through a window of the given size. Once
// the window is full each new value evicts the smallest held one; whatever
// is left is flushed, in order, when src completes.
func OrderBy[T any](window int, cmp orderedbuffer.CompareFunc[T], src Source) Source {
	return Func(func(ctx context.Context, o Observer) error {
		buf := orderedbuffer.NewWindow(window, cmp)
		return src.Subscribe(ctx, Funcs{
			OnNext: func(v any) error {
				val, err := typed[T](v)
				if err != nil {
					return err
				}
				evicted, ok, err := buf.Insert(val)
				if err != nil || !ok {
					return err
				}
				return o.Next(evicted)
			},
			OnError: func(err error) {
				buf.Drain()
				o.Error(err)
			},
			OnComplete: func() {
				for _, v := range buf.Drain() {
					if err := o.Next(v); err != nil && !skipped(err) {
						fail(ctx, o, err)
						return
					}
				}
				o.Complete()
			},
		})
	})
}
