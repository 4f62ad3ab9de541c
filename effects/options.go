package effects

import (
	"context"

	"go.uber.org/zap"
)

// Config is the manager configuration fixed at construction.
type Config struct {
	// DispatchByDefault forwards the values of effects that do not set
	// WithDispatch. Defaults to false: effects are side-effect only unless
	// they opt in.
	DispatchByDefault bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig applies every field of cfg.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.dispatchByDefault = cfg.DispatchByDefault
	}
}

// WithDispatchByDefault sets whether effects without WithDispatch dispatch.
func WithDispatchByDefault(dispatch bool) Option {
	return func(m *Manager) {
		m.dispatchByDefault = dispatch
	}
}

// WithLogger sets the logger. The manager logs nothing by default.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContext bounds the life of every subscription by ctx, in addition to
// the per-effect handle and the global teardown signal.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithInvalidActionHandler is called with an *InvalidActionError each time a
// dispatching effect emits a value without an action type. The error is
// still returned to the emitting source.
func WithInvalidActionHandler(fn func(error)) Option {
	return func(m *Manager) {
		m.onInvalidAction = fn
	}
}
