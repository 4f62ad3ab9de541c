// Package effects manages the lifecycle of effects and routes what they emit
// to an action sink.
//
// # What is an Effect?
//
// An effect is a source of values over time (see package source) paired
// with a dispatch flag. Effects are side-effect only by default: what they
// emit is dropped unless the effect, or the manager through
// DispatchByDefault, opts into dispatching. A dispatched value must carry an
// action type (see package action); one that does not is refused with an
// *InvalidActionError, which usually means the effect should have been
// registered with WithDispatch(false).
//
// # Lifecycle
//
// RegisterEffects subscribes effects, RemoveEffects cancels some of them,
// RemoveAllEffects cancels all of them. Each subscription is bound to two
// signals: its own handle and the global teardown signal. Either one stops it
// for good, and no value emitted after the stopping call returns reaches the
// sink.
//
// The manager holds effects weakly: dropping every reference to a registered
// effect does not keep it alive, although its subscription runs until the
// stream ends or the effects are torn down.
//
// Example:
//
//	m := effects.Init(sink, effects.WithDispatchByDefault(false))
//	defer m.RemoveAllEffects()
//
//	pings := effects.NewEffect(
//	    source.Just(action.New("PING", nil)),
//	    effects.WithDispatch(true),
//	)
//	if err := m.RegisterEffects(pings); err != nil {
//	    return err
//	}
package effects
