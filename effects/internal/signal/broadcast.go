package signal

import (
	"context"
	"errors"
	"sync"
)

// ErrSignaled is the default cause recorded on listeners of a Broadcast.
var ErrSignaled = errors.New("broadcast signaled")

// Broadcast is a teardown signal that can fire any number of times.
//
// Listeners obtain the context of the current epoch. Signal cancels that
// context, which stops every listener of the epoch at once, and opens a
// fresh epoch for later listeners. Signalling an epoch nobody listens to
// is a no-op apart from advancing the counter.
type Broadcast struct {
	mu     sync.Mutex
	cause  error
	ctx    context.Context
	cancel context.CancelCauseFunc
	epoch  uint64
}

// NewBroadcast creates a Broadcast whose listeners observe cause once it fires.
func NewBroadcast(cause error) *Broadcast {
	if cause == nil {
		cause = ErrSignaled
	}
	b := &Broadcast{cause: cause}
	b.ctx, b.cancel = context.WithCancelCause(context.Background())
	return b
}

// Listen returns the context of the current epoch.
func (b *Broadcast) Listen() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// Signal stops every listener of the current epoch and returns the number
// of the epoch that starts afterwards.
func (b *Broadcast) Signal() uint64 {
	b.mu.Lock()
	cancel := b.cancel
	b.ctx, b.cancel = context.WithCancelCause(context.Background())
	b.epoch++
	epoch := b.epoch
	b.mu.Unlock()

	cancel(b.cause)
	return epoch
}

// Epoch returns how many times the Broadcast has fired.
func (b *Broadcast) Epoch() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}
