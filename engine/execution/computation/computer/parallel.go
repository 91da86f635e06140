package computer

import (
	"context"
	"fmt"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

// GroupKeyFunc assigns a transaction to a group. Transactions of one group run
// sequentially, in block order.
type GroupKeyFunc func(tx *chain.Transaction) string

// BySender groups transactions by their sender.
func BySender(tx *chain.Transaction) string {
	return tx.From
}

// ParallelExecutingService executes groups of transactions concurrently, each
// group in its own child view of the block view. If no group writes a key
// another group read or wrote, the groups are merged in the order of their
// first transaction. Otherwise all group results are discarded and the
// transactions are executed sequentially. Either way the outcome equals the
// sequential execution of the transactions that ran.
type ParallelExecutingService struct {
	log        zerolog.Logger
	pool       *workerpool.WorkerPool
	groupKey   GroupKeyFunc
	sequential *SequentialExecutingService
}

var _ ExecutingService = (*ParallelExecutingService)(nil)

func NewParallelExecutingService(
	log zerolog.Logger,
	executor TransactionExecutor,
	metrics module.ExecutionMetrics,
	workers int,
	groupKey GroupKeyFunc,
) *ParallelExecutingService {
	if groupKey == nil {
		groupKey = BySender
	}
	return &ParallelExecutingService{
		log:        log.With().Str("component", "parallel_executing_service").Logger(),
		pool:       workerpool.New(workers),
		groupKey:   groupKey,
		sequential: NewSequentialExecutingService(executor, metrics),
	}
}

// Stop waits for running groups and releases the worker pool.
func (s *ParallelExecutingService) Stop() {
	s.pool.StopWait()
}

type txGroup struct {
	indexes []int
	txs     chain.Transactions
}

type groupResult struct {
	view    *delta.View
	results chain.ReturnSets
	err     error
}

func (s *ParallelExecutingService) groups(txs chain.Transactions) []*txGroup {
	var groups []*txGroup
	byKey := make(map[string]*txGroup)
	for i, tx := range txs {
		key := s.groupKey(tx)
		group, ok := byKey[key]
		if !ok {
			group = &txGroup{}
			byKey[key] = group
			groups = append(groups, group)
		}
		group.indexes = append(group.indexes, i)
		group.txs = append(group.txs, tx)
	}
	return groups
}

func (s *ParallelExecutingService) Execute(
	ctx context.Context,
	view *delta.View,
	header *chain.Header,
	txs chain.Transactions,
	cancellable bool,
) (chain.ReturnSets, error) {
	groups := s.groups(txs)
	if len(groups) <= 1 {
		return s.sequential.Execute(ctx, view, header, txs, cancellable)
	}

	// the block view is only read while groups run
	outcomes := make([]groupResult, len(groups))
	done := make(chan int, len(groups))
	for i, group := range groups {
		i, group := i, group
		child := view.NewChild()
		s.pool.Submit(func() {
			results, err := s.sequential.Execute(ctx, child, header, group.txs, cancellable)
			outcomes[i] = groupResult{view: child, results: results, err: err}
			done <- i
		})
	}
	for range groups {
		<-done
	}

	for i, outcome := range outcomes {
		if outcome.err != nil {
			return nil, fmt.Errorf("could not execute transaction group %d: %w", i, outcome.err)
		}
	}

	snapshots := make([]*delta.Snapshot, 0, len(groups))
	for i, outcome := range outcomes {
		snapshot := outcome.view.Interactions()
		if conflictsWithAny(snapshot, snapshots) {
			s.log.Debug().
				Int("groups", len(groups)).
				Int("conflicting_group", i).
				Msg("transaction groups conflict, executing sequentially")
			return s.sequential.Execute(ctx, view, header, txs, cancellable)
		}
		snapshots = append(snapshots, snapshot)
	}

	byIndex := make([]*chain.ExecutionReturnSet, len(txs))
	for i, group := range groups {
		view.MergeView(outcomes[i].view)
		for j, rs := range outcomes[i].results {
			byIndex[group.indexes[j]] = rs
		}
	}

	results := make(chain.ReturnSets, 0, len(txs))
	for _, rs := range byIndex {
		if rs != nil {
			results = append(results, rs)
		}
	}
	return results, nil
}

func conflictsWithAny(snapshot *delta.Snapshot, others []*delta.Snapshot) bool {
	for _, other := range others {
		if snapshot.ConflictsWith(other) {
			return true
		}
	}
	return false
}
