// Package source defines what an effect produces and ships the producers and
// operators most effects are built from.
//
// A Source is subscribed with a context and an Observer. Subscribe must not
// block: a producer that emits over time starts its own goroutine and stops
// once the context is done. Emitting synchronously from inside Subscribe is
// allowed.
//
// An error returned from Observer.Next that matches ErrSkipValue refuses that
// one value only: asynchronous producers in this package drop it and keep
// emitting. Any other Next error is terminal: synchronous producers return it
// from Subscribe, asynchronous ones report it through Observer.Error. Errors
// caused by the context being done end the stream silently. Subject never
// ends on a refusal, since its caller is the producer and gets every error
// back from Subject.Next.
package source

import (
	"context"
	"errors"
	"fmt"
)

// Observer receives the values of one subscription.
type Observer interface {
	// Next delivers a value. A non-nil error means the value was refused.
	Next(v any) error
	// Error ends the stream with a failure.
	Error(err error)
	// Complete ends the stream normally.
	Complete()
}

// Source is a producer of zero or more values over time.
type Source interface {
	Subscribe(ctx context.Context, o Observer) error
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context, o Observer) error

func (f Func) Subscribe(ctx context.Context, o Observer) error { return f(ctx, o) }

// Funcs builds an Observer out of optional callbacks.
type Funcs struct {
	OnNext     func(v any) error
	OnError    func(err error)
	OnComplete func()
}

var _ Observer = Funcs{}

func (f Funcs) Next(v any) error {
	if f.OnNext == nil {
		return nil
	}
	return f.OnNext(v)
}

func (f Funcs) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}

func (f Funcs) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

var (
	ErrInvalidPeriod  = errors.New("interval period must be positive")
	ErrUnexpectedType = errors.New("unexpected value type")

	// ErrSkipValue is matched by Next errors that reject a single value
	// without ending the stream.
	ErrSkipValue = errors.New("value skipped")
)

// skipped reports whether err refuses only the value that caused it.
func skipped(err error) bool { return errors.Is(err, ErrSkipValue) }

// fail reports err unless the subscription is already over.
func fail(ctx context.Context, o Observer, err error) {
	if ctx.Err() != nil {
		return
	}
	o.Error(err)
}

func typed[T any](v any) (T, error) {
	val, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T, want %T", ErrUnexpectedType, v, zero)
	}
	return val, nil
}
