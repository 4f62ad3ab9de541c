package effects

import (
	"errors"
	"runtime"
	"time"
	"weak"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_dispatch/effects/internal/signal"
	"github.com/on-the-ground/effect_ive_dispatch/effects/source"
	"go.uber.org/zap"
)

// subscription is the Observer handed to an effect's source. It holds the
// effect only weakly.
type subscription struct {
	id       uuid.UUID
	key      weak.Pointer[Effect]
	name     string
	dispatch bool
	since    time.Time
	token    *signal.Token
	cleanup  runtime.Cleanup
	m        *Manager
}

var _ source.Observer = (*subscription)(nil)

func (s *subscription) Next(v any) error {
	if err := s.token.Err(); err != nil {
		return err
	}
	return s.m.dispatch(s, v)
}

func (s *subscription) Error(err error) {
	if s.token.Fired() {
		return
	}
	var invalid *InvalidActionError
	if errors.As(err, &invalid) {
		// already reported through the invalid action handler
		s.m.logger.Debug("effect stream ended on invalid action",
			zap.String("effectId", s.id.String()),
			zap.String("effect", s.name),
		)
		s.m.unregister(s)
		return
	}
	s.m.logger.Error("effect stream failed",
		zap.String("effectId", s.id.String()),
		zap.String("effect", s.name),
		zap.Error(err),
	)
	s.m.unregister(s)
}

func (s *subscription) Complete() {
	if s.token.Fired() {
		return
	}
	s.m.logger.Debug("effect stream completed",
		zap.String("effectId", s.id.String()),
		zap.String("effect", s.name),
	)
	s.m.unregister(s)
}

// cancel fires the handle. Safe to call any number of times.
func (s *subscription) cancel(cause error) {
	s.token.Fire(cause)
	s.cleanup.Stop()
}

func (s *subscription) registration() Registration {
	return Registration{
		ID:       s.id,
		Effect:   s.name,
		Dispatch: s.dispatch,
		Since:    s.since,
	}
}

// cleanupKey is what the runtime cleanup of a collected effect needs to
// drop its index entry.
type cleanupKey struct {
	key weak.Pointer[Effect]
	id  uuid.UUID
}
