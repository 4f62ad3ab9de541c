package source

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// Subject is a hot Source: every value passed to Next is delivered
// synchronously, on the caller's goroutine, to each live subscriber.
//
// Subscribers whose context is done are dropped. A Subject that has
// completed or failed replays that terminal event to late subscribers.
type Subject struct {
	mu        sync.Mutex
	observers map[uint64]subscriber
	nextID    uint64
	done      bool
	err       error
}

type subscriber struct {
	id  uint64
	ctx context.Context
	o   Observer
}

var _ Source = (*Subject)(nil)

// NewSubject returns a subject with no subscribers.
func NewSubject() *Subject {
	return &Subject{observers: make(map[uint64]subscriber)}
}

func (s *Subject) Subscribe(ctx context.Context, o Observer) error {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.Error(err)
		} else {
			o.Complete()
		}
		return nil
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = subscriber{id: id, ctx: ctx, o: o}
	s.mu.Unlock()

	context.AfterFunc(ctx, func() { s.drop(id) })
	return nil
}

// Next delivers v to every live subscriber and returns the combined errors
// of those that refused it. Refusals caused by a finished subscription are
// not reported.
func (s *Subject) Next(v any) error {
	var errs error
	for _, sub := range s.snapshot() {
		if sub.ctx.Err() != nil {
			s.drop(sub.id)
			continue
		}
		if err := sub.o.Next(v); err != nil {
			if sub.ctx.Err() != nil {
				s.drop(sub.id)
				continue
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Complete ends the stream for all current and future subscribers.
func (s *Subject) Complete() {
	for _, sub := range s.finish(nil) {
		sub.o.Complete()
	}
}

// Error fails the stream for all current and future subscribers.
func (s *Subject) Error(err error) {
	for _, sub := range s.finish(err) {
		sub.o.Error(err)
	}
}

// Observers returns the number of live subscribers.
func (s *Subject) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.observers {
		if sub.ctx.Err() == nil {
			n++
		}
	}
	return n
}

// snapshot lists subscribers in subscription order.
func (s *Subject) snapshot() []subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := make([]subscriber, 0, len(s.observers))
	for _, sub := range s.observers {
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b subscriber) int {
		return cmp.Compare(a.id, b.id)
	})
	return subs
}

func (s *Subject) finish(err error) []subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	s.err = err
	subs := make([]subscriber, 0, len(s.observers))
	for _, sub := range s.observers {
		if sub.ctx.Err() == nil {
			subs = append(subs, sub)
		}
	}
	clear(s.observers)
	slices.SortFunc(subs, func(a, b subscriber) int {
		return cmp.Compare(a.id, b.id)
	})
	return subs
}

func (s *Subject) drop(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, id)
}
