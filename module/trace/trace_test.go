package trace

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

func TestTracer_RecordsNestedBlockSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer, err := NewTracer(zerolog.Nop(), "test", 1, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	blockID := chain.HashToID([]byte("block"))
	span, ctx := tracer.StartBlockSpan(context.Background(), blockID, EXEExecuteBlock)
	child, _ := tracer.StartSpanFromContext(ctx, EXEExecuteTransactions)
	child.End()
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, string(EXEExecuteTransactions), ended[0].Name())
	assert.Equal(t, string(EXEExecuteBlock), ended[1].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())

	var found bool
	for _, attr := range ended[1].Attributes() {
		if string(attr.Key) == AttributeBlockID {
			found = true
			assert.Equal(t, blockID.String(), attr.Value.AsString())
		}
	}
	assert.True(t, found)

	<-tracer.Done()
}

func TestNewTracer_InvalidSensitivity(t *testing.T) {
	_, err := NewTracer(zerolog.Nop(), "test", 2)
	assert.Error(t, err)
}

func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()
	ctx := context.Background()
	span, spanCtx := tracer.StartBlockSpan(ctx, chain.ZeroID, EXERunPipeline)
	span.End()
	assert.Equal(t, ctx, spanCtx)
	<-tracer.Ready()
	<-tracer.Done()
}
