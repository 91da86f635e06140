package module

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/trace"
)

var (
	_ Tracer = &trace.Tracer{}
	_ Tracer = &trace.NoopTracer{}
)

// Tracer interface for tracers in the node. Uses open telemetry span definitions.
type Tracer interface {
	ReadyDoneAware

	// StartBlockSpan starts a span for a block. It also returns the context
	// including this span which can be used for nested calls.
	StartBlockSpan(
		ctx context.Context,
		blockID chain.Identifier,
		spanName trace.SpanName,
		opts ...otelTrace.SpanStartOption,
	) (
		otelTrace.Span,
		context.Context,
	)

	// StartSpanFromContext starts a span as child of the span carried by ctx.
	StartSpanFromContext(
		ctx context.Context,
		operationName trace.SpanName,
		opts ...otelTrace.SpanStartOption,
	) (
		otelTrace.Span,
		context.Context,
	)
}
