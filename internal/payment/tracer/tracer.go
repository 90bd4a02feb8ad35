// Package tracer defines the small tracing surface the payment service
// depends on, with an OpenTelemetry adapter alongside.
package tracer

import "context"

// Attribute is a key/value pair attached to a span.
type Attribute struct {
	Key   string
	Value string
}

// String builds a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span is a unit of traced work.
type Span interface {
	// End completes the span, recording err when non-nil.
	End(err error)
}

// Tracer starts spans around payment operations.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Noop is the default tracer; it records nothing.
type Noop struct{}

func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}
