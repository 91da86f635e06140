package computer

import (
	"context"
	"fmt"

	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

// TransactionExecutor runs a single transaction against a state view.
//
// A business-logic failure is reported as a return set with
// TransactionStatusFailed. A returned error is an infrastructure fault and
// aborts the execution of the whole block.
type TransactionExecutor interface {
	ExecuteTransaction(
		ctx context.Context,
		view *delta.View,
		header *chain.Header,
		tx *chain.Transaction,
	) (*chain.ExecutionReturnSet, error)
}

// ExecutingService executes an ordered list of transactions on top of a view.
// The writes of mined transactions are merged into the view, the writes of
// failed ones are discarded. If cancellable is set, the service stops between
// two transactions once ctx is done and returns the results of the transactions
// that ran. Results are in transaction order and deterministic.
type ExecutingService interface {
	Execute(
		ctx context.Context,
		view *delta.View,
		header *chain.Header,
		txs chain.Transactions,
		cancellable bool,
	) (chain.ReturnSets, error)
}

// SequentialExecutingService executes transactions one after another.
type SequentialExecutingService struct {
	executor TransactionExecutor
	metrics  module.ExecutionMetrics
}

var _ ExecutingService = (*SequentialExecutingService)(nil)

func NewSequentialExecutingService(executor TransactionExecutor, metrics module.ExecutionMetrics) *SequentialExecutingService {
	return &SequentialExecutingService{
		executor: executor,
		metrics:  metrics,
	}
}

func (s *SequentialExecutingService) Execute(
	ctx context.Context,
	view *delta.View,
	header *chain.Header,
	txs chain.Transactions,
	cancellable bool,
) (chain.ReturnSets, error) {
	results := make(chain.ReturnSets, 0, len(txs))
	for _, tx := range txs {
		if cancellable && ctx.Err() != nil {
			break
		}
		child := view.NewChild()
		rs, err := executeTransaction(ctx, s.executor, child, header, tx)
		if err != nil {
			return nil, err
		}
		if rs.Status != chain.TransactionStatusMined {
			child.DropDelta()
		}
		view.MergeView(child)
		s.metrics.ExecutionTransactionExecuted(rs.Status)
		results = append(results, rs)
	}
	return results, nil
}

// executeTransaction runs tx in the given child view and completes the return
// set with the identity, the writes and the bloom of the transaction. A
// transaction is never interrupted once started.
func executeTransaction(
	ctx context.Context,
	executor TransactionExecutor,
	child *delta.View,
	header *chain.Header,
	tx *chain.Transaction,
) (*chain.ExecutionReturnSet, error) {
	txID := tx.ID()
	rs, err := executor.ExecuteTransaction(context.WithoutCancel(ctx), child, header, tx)
	if err != nil {
		return nil, fmt.Errorf("could not execute transaction %v: %w", txID, err)
	}
	if rs == nil {
		return nil, fmt.Errorf("executor returned no result for transaction %v", txID)
	}
	if !rs.Executed() {
		return nil, fmt.Errorf("executor returned invalid status %v for transaction %v", rs.Status, txID)
	}

	rs.TransactionID = txID
	if rs.Status == chain.TransactionStatusMined {
		set := child.Delta()
		rs.StateChanges = make(map[string][]byte, len(set.Changes))
		for key, value := range set.Changes {
			rs.StateChanges[key] = value
		}
		rs.StateDeletes = make(map[string]bool, len(set.Deletes))
		for key := range set.Deletes {
			rs.StateDeletes[key] = true
		}
	} else {
		rs.StateChanges = nil
		rs.StateDeletes = nil
	}
	for _, log := range rs.Logs {
		rs.Bloom = chain.MergeBlooms(rs.Bloom, log.Bloom())
	}
	return rs, nil
}
