package computer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// StateViews provides the state a block is executed on.
type StateViews interface {
	// NewBlockView returns a view of the state after executing the given block.
	NewBlockView(blockID chain.Identifier) (*delta.View, error)
}

// ExecutedBlock is the result of executing a block.
type ExecutedBlock struct {
	// Block has all execution related header fields filled in and lists the
	// executed transactions only.
	Block *chain.Block
	// ReturnSets holds one entry per executed transaction, in block order.
	ReturnSets chain.ReturnSets
	// StateSet is the state diff of the block, to be staged until the block
	// becomes irreversible.
	StateSet *chain.BlockStateSet
	// Unexecutable lists the cancellable transactions that were not reached.
	Unexecutable []chain.Identifier
}

// TransactionResults converts the return sets into their persisted form.
func (b *ExecutedBlock) TransactionResults() []*chain.TransactionResult {
	blockID := b.Block.ID()
	results := make([]*chain.TransactionResult, 0, len(b.ReturnSets))
	for _, rs := range b.ReturnSets {
		results = append(results, chain.NewTransactionResult(rs, blockID, b.Block.Height()))
	}
	return results
}

// A BlockExecutor executes the transactions of a block.
type BlockExecutor interface {
	// ExecuteBlock executes the transactions on top of the state after the
	// parent of header. Non-cancellable transactions always run to completion.
	// Cancellable transactions run until ctx is done; the ones not reached are
	// excluded from the block and reported as unexecutable.
	//
	// All errors are infrastructure faults: the transaction executor or the
	// state failed. Business failures of transactions are part of the result.
	ExecuteBlock(
		ctx context.Context,
		header *chain.Header,
		nonCancellable chain.Transactions,
		cancellable chain.Transactions,
	) (*ExecutedBlock, error)
}

type blockExecutor struct {
	log      zerolog.Logger
	metrics  module.ExecutionMetrics
	tracer   module.Tracer
	state    StateViews
	service  ExecutingService
	consumer notifications.Consumer
}

var _ BlockExecutor = (*blockExecutor)(nil)

// NewBlockExecutor creates a new block executor.
func NewBlockExecutor(
	log zerolog.Logger,
	metrics module.ExecutionMetrics,
	tracer module.Tracer,
	state StateViews,
	service ExecutingService,
	consumer notifications.Consumer,
) BlockExecutor {
	return &blockExecutor{
		log:      log.With().Str("component", "block_executor").Logger(),
		metrics:  metrics,
		tracer:   tracer,
		state:    state,
		service:  service,
		consumer: consumer,
	}
}

func (e *blockExecutor) ExecuteBlock(
	ctx context.Context,
	header *chain.Header,
	nonCancellable chain.Transactions,
	cancellable chain.Transactions,
) (*ExecutedBlock, error) {
	span, ctx := e.tracer.StartSpanFromContext(ctx, trace.EXEExecuteBlock)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("height", int64(header.Height)),
		attribute.Int("non_cancellable", len(nonCancellable)),
		attribute.Int("cancellable", len(cancellable)),
	)
	start := time.Now()

	view, err := e.state.NewBlockView(header.ParentID)
	if err != nil {
		return nil, fmt.Errorf("could not get state after parent %v: %w", header.ParentID, err)
	}

	executed, err := e.executeTransactions(ctx, view, header, nonCancellable, false)
	if err != nil {
		return nil, fmt.Errorf("could not execute non-cancellable transactions: %w", err)
	}

	var unexecutable []chain.Identifier
	if len(cancellable) > 0 {
		results, err := e.executeTransactions(ctx, view, header, cancellable, true)
		if err != nil {
			return nil, fmt.Errorf("could not execute cancellable transactions: %w", err)
		}
		executed = append(executed, results...)

		ran := make(map[chain.Identifier]struct{}, len(results))
		for _, rs := range results {
			ran[rs.TransactionID] = struct{}{}
		}
		for _, tx := range cancellable {
			txID := tx.ID()
			if _, ok := ran[txID]; !ok {
				unexecutable = append(unexecutable, txID)
			}
		}
	}

	txIDs := executed.TransactionIDs()
	set := view.Delta()

	executedHeader := header.Copy()
	executedHeader.TransactionRoot = chain.TransactionRoot(txIDs)
	executedHeader.StatusRoot = chain.StatusRoot(executed)
	executedHeader.StateRoot = set.StateRoot()
	executedHeader.Bloom = executed.Bloom()
	block := &chain.Block{
		Header:         executedHeader,
		TransactionIDs: txIDs,
	}

	blockID := block.ID()
	set.BlockID = blockID
	set.ParentID = executedHeader.ParentID
	set.Height = executedHeader.Height

	if len(unexecutable) > 0 {
		e.consumer.OnUnexecutableTransactions(executedHeader, unexecutable)
	}

	e.metrics.ExecutionBlockExecuted(time.Since(start), len(txIDs))
	e.log.Debug().
		Hex("block_id", logging.ID(blockID)).
		Uint64("height", executedHeader.Height).
		Int("executed", len(txIDs)).
		Int("unexecutable", len(unexecutable)).
		Dur("duration", time.Since(start)).
		Msg("block executed")

	return &ExecutedBlock{
		Block:        block,
		ReturnSets:   executed,
		StateSet:     set,
		Unexecutable: unexecutable,
	}, nil
}

func (e *blockExecutor) executeTransactions(
	ctx context.Context,
	view *delta.View,
	header *chain.Header,
	txs chain.Transactions,
	cancellable bool,
) (chain.ReturnSets, error) {
	span, ctx := e.tracer.StartSpanFromContext(ctx, trace.EXEExecuteTransactions)
	defer span.End()
	span.SetAttributes(attribute.Bool("cancellable", cancellable))

	if !cancellable {
		ctx = context.WithoutCancel(ctx)
	}
	return e.service.Execute(ctx, view, header, txs, cancellable)
}
