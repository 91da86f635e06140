package trace

// SpanName is the name of a span.
type SpanName string

// Span names
const (
	// Chain state
	CHNAttachBlock SpanName = "chain.attachBlock"
	CHNAdvanceLIB  SpanName = "chain.advanceLIB"

	// Execution
	EXEExecuteBlock        SpanName = "exe.computer.executeBlock"
	EXEExecuteTransactions SpanName = "exe.computer.executeTransactions"
	EXERunPipeline         SpanName = "exe.pipeline.run"
	EXEPipelineBlock       SpanName = "exe.pipeline.executeBlock"
	EXEProcessOutcome      SpanName = "exe.ingestion.processOutcome"
	EXEProduceBlock        SpanName = "exe.ingestion.produceBlock"
)

const (
	// AttributeBlockID is the attribute holding the hex block id of a block span.
	AttributeBlockID = "block_id"
)
