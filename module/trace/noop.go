package trace

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

var (
	NoopSpan trace.Span = noop.Span{}
)

// NoopTracer is the implementation of the Tracer interface.
type NoopTracer struct {
	tracer trace.Tracer
}

// NewNoopTracer creates a new tracer which records nothing.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{
		tracer: noop.NewTracerProvider().Tracer(""),
	}
}

// Ready returns a channel that will close when the network stack is ready.
func (t *NoopTracer) Ready() <-chan struct{} {
	ready := make(chan struct{})
	close(ready)
	return ready
}

// Done returns a channel that will close when shutdown is complete.
func (t *NoopTracer) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (t *NoopTracer) StartBlockSpan(
	ctx context.Context,
	_ chain.Identifier,
	_ SpanName,
	_ ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	return NoopSpan, ctx
}

func (t *NoopTracer) StartSpanFromContext(
	ctx context.Context,
	_ SpanName,
	_ ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	return NoopSpan, ctx
}
