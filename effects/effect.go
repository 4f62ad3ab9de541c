package effects

import (
	"github.com/on-the-ground/effect_ive_dispatch/effects/source"
)

// Effect couples a Source with its dispatch configuration.
//
// An Effect is identified by the pointer NewEffect returns: registering or
// removing the same *Effect always refers to the same registry entry. The
// configuration is fixed at construction.
type Effect struct {
	source   source.Source
	name     string
	dispatch *bool
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithDispatch overrides the manager's DispatchByDefault for this effect.
func WithDispatch(dispatch bool) EffectOption {
	return func(e *Effect) {
		e.dispatch = &dispatch
	}
}

// WithName labels the effect in logs and errors.
func WithName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// NewEffect creates an effect producing the values of src.
func NewEffect(src source.Source, opts ...EffectOption) *Effect {
	e := &Effect{source: src}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns the label given with WithName, or "anonymous".
func (e *Effect) Name() string {
	if e.name == "" {
		return "anonymous"
	}
	return e.name
}

// Dispatch returns the per-effect dispatch flag, and whether one was set.
func (e *Effect) Dispatch() (dispatch bool, ok bool) {
	if e.dispatch == nil {
		return false, false
	}
	return *e.dispatch, true
}

// Source returns the source the effect was created with.
func (e *Effect) Source() source.Source { return e.source }
