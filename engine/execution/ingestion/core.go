package ingestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/engine/execution/pipeline"
	"github.com/AElfProject/AElf-sub008/engine/execution/state"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/module/validation"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// Bootstrap executes the genesis block against the empty state and
// initialises the chain state and the world state with it.
func Bootstrap(
	ctx context.Context,
	log zerolog.Logger,
	db *badger.DB,
	metrics module.ChainMetrics,
	tracer module.Tracer,
	all *storage.All,
	execState *state.ExecutionState,
	executor computer.BlockExecutor,
	genesis *chain.Header,
	txs chain.Transactions,
) (*protocol.State, error) {
	if genesis.Height != 0 || genesis.ParentID != chain.ZeroID {
		return nil, fmt.Errorf("invalid genesis header at height %d with parent %v", genesis.Height, genesis.ParentID)
	}

	executed, err := executor.ExecuteBlock(ctx, genesis, txs, nil)
	if err != nil {
		return nil, fmt.Errorf("could not execute genesis block: %w", err)
	}
	for _, tx := range txs {
		err = all.Transactions.Store(tx)
		if err != nil {
			return nil, fmt.Errorf("could not store genesis transaction: %w", err)
		}
	}

	st, err := protocol.Bootstrap(log, db, metrics, tracer, all, executed.Block,
		execState.BootstrapTx(executed.StateSet, executed.TransactionResults()))
	if err != nil {
		return nil, fmt.Errorf("could not bootstrap chain state: %w", err)
	}
	return st, nil
}

// Core connects the execution components and serialises every mutation of
// the chain: attaching blocks, running the execution pipeline, processing its
// outcome, producing blocks and advancing the last irreversible block.
type Core struct {
	mu sync.Mutex

	log    zerolog.Logger
	tracer module.Tracer
	cfg    Config

	state        *protocol.State
	execState    *state.ExecutionState
	transactions storage.Transactions
	executor     computer.BlockExecutor
	pipeline     *pipeline.Pipeline
	processor    *ResultProcessor
}

func NewCore(
	log zerolog.Logger,
	metrics module.ExecutionMetrics,
	tracer module.Tracer,
	cfg Config,
	st *protocol.State,
	execState *state.ExecutionState,
	all *storage.All,
	executor computer.BlockExecutor,
	validator validation.Provider,
	consumer notifications.Consumer,
) *Core {
	return &Core{
		log:          log.With().Str("component", "ingestion_core").Logger(),
		tracer:       tracer,
		cfg:          cfg,
		state:        st,
		execState:    execState,
		transactions: all.Transactions,
		executor:     executor,
		pipeline: pipeline.New(log, metrics, tracer, st, all.Blocks, all.Transactions,
			execState, executor, validator, consumer),
		processor: NewResultProcessor(log, tracer, st, consumer),
	}
}

// Chain returns a read-only snapshot of the chain record.
func (c *Core) Chain() *chain.Chain {
	return c.state.Chain()
}

// StoreTransactions stores the transactions of blocks about to be attached.
func (c *Core) StoreTransactions(txs chain.Transactions) error {
	for _, tx := range txs {
		err := c.transactions.Store(tx)
		if err != nil {
			return fmt.Errorf("could not store transaction %v: %w", tx.ID(), err)
		}
	}
	return nil
}

// AttachBlock links the block into the block graph without executing it.
//
// Expected errors during normal operations:
//   - state.InvalidExtensionError if the block cannot extend the chain
func (c *Core) AttachBlock(ctx context.Context, block *chain.Block) (chain.AttachStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.AttachBlock(ctx, block)
}

// ProcessBlock attaches the block and executes the longest chain while it is
// ahead of the best chain. This also resumes a longest chain left unexecuted
// by an earlier failed attempt, so processing a known block again retries its
// execution.
//
// Expected errors during normal operations:
//   - state.InvalidExtensionError if the block cannot extend the chain
func (c *Core) ProcessBlock(ctx context.Context, block *chain.Block) (chain.AttachStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status, err := c.state.AttachBlock(ctx, block)
	if err != nil {
		return chain.AttachStatusNone, err
	}
	_, err = c.executeLongestChain(ctx)
	if err != nil {
		return status, err
	}
	return status, nil
}

// ExecuteLongestChain executes the longest chain until it becomes the best
// chain. Aborted runs discard their branch, after which the new longest chain
// is executed. Returns the outcome of the last run, nil if the best chain was
// already the longest.
//
// All errors are infrastructure faults, the chain state remains consistent.
func (c *Core) ExecuteLongestChain(ctx context.Context) (*pipeline.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executeLongestChain(ctx)
}

func (c *Core) executeLongestChain(ctx context.Context) (*pipeline.Outcome, error) {
	var outcome *pipeline.Outcome
	for {
		snapshot := c.state.Chain()
		if snapshot.LongestChainID == snapshot.BestChainID {
			return outcome, nil
		}

		var err error
		outcome, err = c.pipeline.Run(ctx, snapshot.LongestChainID)
		if err != nil {
			return nil, fmt.Errorf("could not execute longest chain %v: %w", snapshot.LongestChainID, err)
		}
		err = c.processor.Process(ctx, outcome)
		if err != nil {
			return nil, fmt.Errorf("could not process execution outcome: %w", err)
		}
		if !outcome.Aborted {
			return outcome, nil
		}
	}
}

// AdvanceLIB makes the given block of the best chain irreversible, merges the
// state of the newly irreversible blocks into the world state and prunes the
// branches that can no longer become canonical.
//
// No errors are expected during normal operations.
func (c *Core) AdvanceLIB(ctx context.Context, libID chain.Identifier, libHeight uint64) (*protocol.PruneResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.AdvanceLIB(ctx, libID, libHeight, c.execState.MergeBlockStatesTx)
}

// ProduceBlock builds a block on top of the best chain from the template,
// which provides the chain id, timestamp and consensus data. Non-cancellable
// transactions always execute; cancellable transactions execute until the
// production deadline or until ctx is done. The block is staged, attached and
// the longest chain is executed.
func (c *Core) ProduceBlock(
	ctx context.Context,
	template *chain.Header,
	nonCancellable chain.Transactions,
	cancellable chain.Transactions,
) (*computer.ExecutedBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	span, ctx := c.tracer.StartSpanFromContext(ctx, trace.EXEProduceBlock)
	defer span.End()

	best := c.state.Chain()
	header := template.Copy()
	header.ParentID = best.BestChainID
	header.Height = best.BestChainHeight + 1

	deadlineCtx, cancel := context.WithTimeout(ctx, c.cfg.ProductionDeadline)
	executed, err := c.executor.ExecuteBlock(deadlineCtx, header, nonCancellable, cancellable)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("could not execute produced block: %w", err)
	}

	included := make(map[chain.Identifier]struct{}, len(executed.Block.TransactionIDs))
	for _, txID := range executed.Block.TransactionIDs {
		included[txID] = struct{}{}
	}
	for _, txs := range []chain.Transactions{nonCancellable, cancellable} {
		for _, tx := range txs {
			if _, ok := included[tx.ID()]; !ok {
				continue
			}
			err = c.transactions.Store(tx)
			if err != nil {
				return nil, fmt.Errorf("could not store transaction: %w", err)
			}
		}
	}

	err = c.execState.SaveBlockState(executed.StateSet, executed.TransactionResults())
	if err != nil {
		return nil, fmt.Errorf("could not stage produced block: %w", err)
	}

	status, err := c.state.AttachBlock(ctx, executed.Block)
	if err != nil {
		return nil, fmt.Errorf("could not attach produced block: %w", err)
	}
	c.log.Info().
		Hex("block_id", logging.Entity(executed.Block)).
		Uint64("height", header.Height).
		Int("transactions", len(executed.Block.TransactionIDs)).
		Int("unexecutable", len(executed.Unexecutable)).
		Str("attach_status", status.String()).
		Msg("block produced")

	_, err = c.executeLongestChain(ctx)
	if err != nil {
		return nil, err
	}
	return executed, nil
}
