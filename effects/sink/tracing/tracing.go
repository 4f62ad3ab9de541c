// Package tracing wraps a sink so every dispatched action is recorded as an
// OpenTelemetry span.
package tracing

import (
	"context"
	"fmt"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ScopeName = "github.com/on-the-ground/effect_ive_dispatch/effects/sink/tracing"
	SpanName  = "effects.dispatch"

	AttrActionType   = attribute.Key("action.type")
	AttrActionGoType = attribute.Key("action.go_type")
)

type Option func(*Sink)

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Sink) {
		if tp != nil {
			s.tracer = tp.Tracer(ScopeName)
		}
	}
}

// Sink starts a span around each call to the wrapped sink. The wrapped sink
// receives the context carrying that span.
type Sink struct {
	next   action.Sink
	tracer trace.Tracer
}

var _ action.Sink = (*Sink)(nil)

func New(next action.Sink, opts ...Option) *Sink {
	if next == nil {
		next = action.Discard
	}
	s := &Sink{next: next, tracer: otel.GetTracerProvider().Tracer(ScopeName)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Sink) Dispatch(ctx context.Context, a any) {
	typ, _ := action.TypeOf(a)
	ctx, span := s.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			AttrActionType.String(typ),
			AttrActionGoType.String(fmt.Sprintf("%T", a)),
		),
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprint(r))
			panic(r)
		}
	}()

	s.next.Dispatch(ctx, a)
}
