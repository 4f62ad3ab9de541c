package signal

import (
	"context"
	"errors"
)

// ErrFired is the default cause recorded when a Token fires without one.
var ErrFired = errors.New("token fired")

// Token is a one-shot cancellation handle that is done as soon as its own
// Fire is called or any of the contexts it was composed from is done.
//
// Fire is idempotent and safe for concurrent use. Err checks every composed
// context on each call, so once a parent is cancelled no caller can observe
// the token as live.
type Token struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	others []context.Context
}

// NewToken returns a Token derived only from parent.
func NewToken(parent context.Context) *Token {
	return AnyOf(parent)
}

// AnyOf returns a Token that is done when first, any of rest, or the Token
// itself fires, whichever happens first.
func AnyOf(first context.Context, rest ...context.Context) *Token {
	ctx, cancel := context.WithCancelCause(first)

	stops := make([]func() bool, 0, len(rest))
	for _, other := range rest {
		stops = append(stops, context.AfterFunc(other, func() {
			cancel(context.Cause(other))
		}))
	}
	context.AfterFunc(ctx, func() {
		for _, stop := range stops {
			stop()
		}
	})

	return &Token{ctx: ctx, cancel: cancel, others: rest}
}

// Context returns a context that is cancelled once the Token is done.
func (t *Token) Context() context.Context { return t.ctx }

// Done mirrors Context().Done().
func (t *Token) Done() <-chan struct{} { return t.ctx.Done() }

// Fire cancels the token with cause. A nil cause records ErrFired.
func (t *Token) Fire(cause error) {
	if cause == nil {
		cause = ErrFired
	}
	t.cancel(cause)
}

// Err returns nil while the token is live, otherwise the cause of the first
// signal that stopped it.
func (t *Token) Err() error {
	if t.ctx.Err() != nil {
		return context.Cause(t.ctx)
	}
	for _, other := range t.others {
		if other.Err() != nil {
			t.cancel(context.Cause(other))
			return context.Cause(t.ctx)
		}
	}
	return nil
}

// Fired reports whether the token is done.
func (t *Token) Fired() bool { return t.Err() != nil }
