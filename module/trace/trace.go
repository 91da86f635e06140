package trace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Tracer is the implementation of the module.Tracer interface on top of the
// open telemetry SDK. Span export is configured through the provider options,
// e.g. sdktrace.WithBatcher(exporter).
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	log      zerolog.Logger
}

// NewTracer creates a tracer for the given service.
func NewTracer(
	log zerolog.Logger,
	serviceName string,
	sensitivity float64,
	opts ...sdktrace.TracerProviderOption,
) (*Tracer, error) {
	if sensitivity < 0 || sensitivity > 1 {
		return nil, fmt.Errorf("invalid sampling sensitivity %f, must be within [0, 1]", sensitivity)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sensitivity))),
	}, opts...)
	provider := sdktrace.NewTracerProvider(opts...)

	return &Tracer{
		tracer:   provider.Tracer(serviceName),
		provider: provider,
		log:      log.With().Str("component", "tracer").Logger(),
	}, nil
}

// Ready returns a channel that will close when the network stack is ready.
func (t *Tracer) Ready() <-chan struct{} {
	ready := make(chan struct{})
	close(ready)
	return ready
}

// Done returns a channel that will close when shutdown is complete. Pending
// spans are flushed to the exporter.
func (t *Tracer) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := t.provider.Shutdown(context.Background())
		if err != nil {
			t.log.Error().Err(err).Msg("error while shutting down tracer provider")
		}
	}()
	return done
}

// StartBlockSpan starts a span for a block tagged with its id.
func (t *Tracer) StartBlockSpan(
	ctx context.Context,
	blockID chain.Identifier,
	spanName SpanName,
	opts ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	opts = append(opts, trace.WithAttributes(attribute.String(AttributeBlockID, blockID.String())))
	ctx, span := t.tracer.Start(ctx, string(spanName), opts...)
	return span, ctx
}

// StartSpanFromContext starts a span as child of the span carried by ctx, or a
// root span if there is none.
func (t *Tracer) StartSpanFromContext(
	ctx context.Context,
	operationName SpanName,
	opts ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	ctx, span := t.tracer.Start(ctx, string(operationName), opts...)
	return span, ctx
}
