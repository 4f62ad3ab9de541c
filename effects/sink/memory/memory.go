// Package memory provides a Sink that records every action it receives.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
)

// Sink keeps dispatched actions in arrival order. Safe for concurrent use.
type Sink struct {
	mu      sync.Mutex
	actions []any
	changed chan struct{}
}

var _ action.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{changed: make(chan struct{})}
}

func (s *Sink) Dispatch(_ context.Context, a any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
	close(s.changed)
	s.changed = make(chan struct{})
}

// Actions returns a copy of everything received so far.
func (s *Sink) Actions() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.actions...)
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// Wait blocks until at least n actions were received or timeout elapses,
// and reports which happened.
func (s *Sink) Wait(n int, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		s.mu.Lock()
		if len(s.actions) >= n {
			s.mu.Unlock()
			return true
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return false
		}
	}
}

func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = nil
}
