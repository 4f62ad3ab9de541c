package effects

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/on-the-ground/effect_ive_dispatch/effects/source"
)

var (
	// ErrInvalidActionShape is matched by errors raised when a dispatching
	// effect emits a value without a usable action type.
	ErrInvalidActionShape = action.ErrInvalidShape

	ErrNilEffect = errors.New("nil effect")
	ErrNilSource = errors.New("effect has no source")
	ErrSubscribe = errors.New("failed to subscribe effect")

	// ErrEffectRemoved is the cause observed by a source after RemoveEffects
	// or a re-registration cancelled its subscription.
	ErrEffectRemoved = errors.New("effect removed")
	// ErrEffectsTornDown is the cause observed by a source after
	// RemoveAllEffects.
	ErrEffectsTornDown = errors.New("all effects removed")
)

// InvalidActionError is returned to a source whose emission was routed for
// dispatch but carried no action type. Nothing is dispatched for it. It
// matches source.ErrSkipValue, so streaming sources keep running.
type InvalidActionError struct {
	Effect string
	Value  any
	Err    error
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("effect %s: %v", e.Effect, e.Err)
}

func (e *InvalidActionError) Unwrap() error { return e.Err }

func (e *InvalidActionError) Is(target error) bool { return target == source.ErrSkipValue }
