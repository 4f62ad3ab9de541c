package action

import "context"

// Typed is implemented by values that carry their own action type.
type Typed interface {
	ActionType() string
}

// Action is a minimal typed action with an opaque payload.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// New builds an Action of the given type.
func New(actionType string, payload any) Action {
	return Action{Type: actionType, Payload: payload}
}

func (a Action) ActionType() string { return a.Type }

// Sink receives every action forwarded by the effects manager.
// The manager never inspects what a sink does with an action.
type Sink interface {
	Dispatch(ctx context.Context, a any)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, a any)

func (f SinkFunc) Dispatch(ctx context.Context, a any) { f(ctx, a) }

// Discard is a Sink that drops everything.
var Discard Sink = SinkFunc(func(context.Context, any) {})
