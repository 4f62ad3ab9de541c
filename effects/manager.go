package effects

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/on-the-ground/effect_ive_dispatch/effects/internal/signal"
	"github.com/on-the-ground/effect_ive_dispatch/effects/log"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Manager subscribes effects and forwards what they emit to an action sink.
//
// Every subscription stops as soon as its own handle fires (RemoveEffects,
// re-registration, end of stream) or the global teardown signal fires
// (RemoveAllEffects), whichever comes first. Both take effect before the
// call that fired them returns.
//
// Methods are safe for concurrent use. Sources and the sink are always
// called without internal locks held, so either may call back into the
// manager.
type Manager struct {
	sink              action.Sink
	dispatchByDefault bool
	logger            *zap.Logger
	ctx               context.Context
	onInvalidAction   func(error)

	mu       sync.Mutex
	teardown *signal.Broadcast
	registry *registry
}

// New creates a manager forwarding to sink. A nil sink discards actions.
func New(sink action.Sink, opts ...Option) *Manager {
	m := &Manager{
		sink:     sink,
		logger:   log.Nop(),
		ctx:      context.Background(),
		teardown: signal.NewBroadcast(ErrEffectsTornDown),
		registry: newRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.sink == nil {
		m.logger.Warn("no action sink given, dispatched actions are discarded")
		m.sink = action.Discard
	}
	if m.onInvalidAction == nil {
		m.onInvalidAction = func(err error) {
			m.logger.Error("invalid action", zap.Error(err))
		}
	}
	return m
}

var defaultManager atomic.Pointer[Manager]

// Init creates the process-wide manager returned by Default, replacing any
// previous one. The previous manager keeps its subscriptions.
func Init(sink action.Sink, opts ...Option) *Manager {
	m := New(sink, opts...)
	defaultManager.Store(m)
	return m
}

// Default returns the manager created by the last Init, or nil.
func Default() *Manager {
	return defaultManager.Load()
}

// RegisterEffects subscribes each effect independently. The returned error
// combines the failures of the effects that could not be subscribed; the
// others stay registered.
//
// Registering an effect that is already registered cancels its previous
// subscription first.
func (m *Manager) RegisterEffects(effects ...*Effect) error {
	var errs error
	for _, e := range effects {
		errs = multierr.Append(errs, m.subscribe(e))
	}
	return errs
}

// RemoveEffects cancels the subscription of each registered effect. Once it
// returns, no further value of those effects reaches the sink. Effects that
// are not registered are ignored.
func (m *Manager) RemoveEffects(effects ...*Effect) {
	for _, e := range effects {
		if e == nil {
			continue
		}
		m.mu.Lock()
		s, ok := m.registry.lookup(e)
		if ok {
			m.registry.remove(s)
		}
		m.mu.Unlock()

		if ok {
			m.release(s, ErrEffectRemoved)
		}
	}
}

// RemoveAllEffects fires the global teardown signal: every subscription
// alive at this point stops and the registry is emptied. It may be called
// any number of times; effects registered afterwards are unaffected by
// earlier calls.
func (m *Manager) RemoveAllEffects() {
	m.mu.Lock()
	subs := m.registry.drain()
	epoch := m.teardown.Signal()
	m.mu.Unlock()

	for _, s := range subs {
		s.cleanup.Stop()
	}
	m.logger.Sugar().Debugf("removed all effects: count: %v, epoch: %v", len(subs), epoch)
}

// Registered reports whether e currently has a live subscription.
func (m *Manager) Registered(e *Effect) bool {
	if e == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.registry.lookup(e)
	return ok
}

// Len returns the number of live subscriptions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.len()
}

// Registrations returns a snapshot of the live subscriptions.
func (m *Manager) Registrations() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	regs := make([]Registration, 0, m.registry.len())
	m.registry.each(func(s *subscription) {
		regs = append(regs, s.registration())
	})
	return regs
}

func (m *Manager) subscribe(e *Effect) (err error) {
	if e == nil {
		return ErrNilEffect
	}
	if e.source == nil {
		return fmt.Errorf("%w: %s", ErrNilSource, e.Name())
	}

	dispatch, ok := e.Dispatch()
	if !ok {
		dispatch = m.dispatchByDefault
	}
	s := &subscription{
		id:       uuid.New(),
		key:      weak.Make(e),
		name:     e.Name(),
		dispatch: dispatch,
		since:    time.Now(),
		m:        m,
	}
	s.cleanup = runtime.AddCleanup(e, m.forget, cleanupKey{key: s.key, id: s.id})

	m.mu.Lock()
	prev, replaced := m.registry.lookup(e)
	if replaced {
		m.registry.remove(prev)
	}
	// the token must come from the epoch the subscription is registered in
	s.token = signal.AnyOf(m.teardown.Listen(), m.ctx)
	m.registry.insert(s)
	m.mu.Unlock()

	if replaced {
		m.release(prev, ErrEffectRemoved)
		m.logger.Warn("effect registered twice, previous subscription cancelled",
			zap.String("effect", s.name),
			zap.String("previousEffectId", prev.id.String()),
			zap.String("effectId", s.id.String()),
		)
	}

	m.logger.Debug("registered effect", log.Fields(map[string]interface{}{
		"effectId": s.id.String(),
		"effect":   s.name,
		"dispatch": s.dispatch,
	})...)

	defer func() {
		if r := recover(); r != nil {
			m.unregister(s)
			err = fmt.Errorf("%w %s: panic: %v", ErrSubscribe, s.name, r)
		}
	}()
	if err := e.source.Subscribe(s.token.Context(), s); err != nil {
		m.unregister(s)
		return fmt.Errorf("%w %s: %w", ErrSubscribe, s.name, err)
	}
	return nil
}

// unregister drops s if it is still registered and cancels it.
func (m *Manager) unregister(s *subscription) {
	m.mu.Lock()
	removed := m.registry.remove(s)
	m.mu.Unlock()

	if removed {
		m.release(s, ErrEffectRemoved)
	} else {
		s.cancel(ErrEffectRemoved)
	}
}

func (m *Manager) release(s *subscription, cause error) {
	s.cancel(cause)
	m.logger.Debug("removed effect",
		zap.String("effectId", s.id.String()),
		zap.String("effect", s.name),
		zap.Duration("lifetime", s.registration().Active(time.Now()).Duration()),
	)
}

// forget runs once an effect has been garbage collected.
func (m *Manager) forget(k cleanupKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.forget(k.key, k.id)
}

func (m *Manager) dispatch(s *subscription, v any) error {
	if !s.dispatch {
		return nil
	}
	if err := action.Validate(v); err != nil {
		invalid := &InvalidActionError{Effect: s.name, Value: v, Err: err}
		m.onInvalidAction(invalid)
		return invalid
	}
	m.sink.Dispatch(s.token.Context(), v)
	return nil
}
