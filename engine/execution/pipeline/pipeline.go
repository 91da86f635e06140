package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/module/validation"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// Outcome statuses reported to metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeAborted     = "aborted"
	OutcomeInterrupted = "interrupted"
)

// ChainState is the part of the chain state the pipeline works on.
type ChainState interface {
	// NotExecutedLinks returns the links between the last executed ancestor
	// of the tip and the tip, oldest first.
	NotExecutedLinks(tipID chain.Identifier) ([]*chain.ChainBlockLink, error)
	// MarkFailed sets the execution status of the block to failed.
	MarkFailed(ctx context.Context, blockID chain.Identifier) error
}

// BlockStates stores the execution results of blocks.
type BlockStates interface {
	HasBlockState(blockID chain.Identifier) (bool, error)
	SaveBlockState(set *chain.BlockStateSet, results []*chain.TransactionResult) error
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	// TipID is the tip the pipeline ran towards.
	TipID chain.Identifier
	// Executed holds the blocks executed and accepted in this run, oldest first.
	Executed []*chain.Block
	// Aborted is set if a block failed validation or its execution result
	// diverged. FailedBlockID names that block.
	Aborted       bool
	FailedBlockID chain.Identifier
	// Interrupted is set if the run stopped early because its context was
	// done.
	Interrupted bool
}

// Status returns the outcome as a metrics label.
func (o *Outcome) Status() string {
	switch {
	case o.Aborted:
		return OutcomeAborted
	case o.Interrupted:
		return OutcomeInterrupted
	default:
		return OutcomeSuccess
	}
}

// Pipeline executes the not yet executed blocks of a branch, oldest first.
type Pipeline struct {
	log          zerolog.Logger
	metrics      module.ExecutionMetrics
	tracer       module.Tracer
	state        ChainState
	blocks       storage.Blocks
	transactions storage.Transactions
	blockStates  BlockStates
	executor     computer.BlockExecutor
	validator    validation.Provider
	consumer     notifications.Consumer
}

func New(
	log zerolog.Logger,
	metrics module.ExecutionMetrics,
	tracer module.Tracer,
	state ChainState,
	blocks storage.Blocks,
	transactions storage.Transactions,
	blockStates BlockStates,
	executor computer.BlockExecutor,
	validator validation.Provider,
	consumer notifications.Consumer,
) *Pipeline {
	return &Pipeline{
		log:          log.With().Str("component", "execution_pipeline").Logger(),
		metrics:      metrics,
		tracer:       tracer,
		state:        state,
		blocks:       blocks,
		transactions: transactions,
		blockStates:  blockStates,
		executor:     executor,
		validator:    validator,
		consumer:     consumer,
	}
}

// Run executes the blocks between the last executed ancestor of the tip and
// the tip. It stops at the first block that fails validation or whose
// recomputed id differs; that block is marked as failed and the outcome is
// aborted. If ctx is done between two blocks, the run stops and the outcome
// holds the blocks executed so far.
//
// All errors are infrastructure faults. Blocks are not marked in that case;
// execution results already staged for earlier blocks are reused by the next
// run.
func (p *Pipeline) Run(ctx context.Context, tipID chain.Identifier) (*Outcome, error) {
	span, ctx := p.tracer.StartBlockSpan(ctx, tipID, trace.EXERunPipeline)
	defer span.End()
	start := time.Now()

	links, err := p.state.NotExecutedLinks(tipID)
	if err != nil {
		return nil, fmt.Errorf("could not get not executed blocks up to %v: %w", tipID, err)
	}

	outcome := &Outcome{TipID: tipID}
	for _, link := range links {
		if ctx.Err() != nil {
			outcome.Interrupted = true
			break
		}

		block, err := p.blocks.ByID(link.BlockID)
		if err != nil {
			return nil, fmt.Errorf("could not get block %v: %w", link.BlockID, err)
		}

		valid, err := p.executeBlock(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("could not execute block %v at height %d: %w", link.BlockID, link.Height, err)
		}
		if !valid {
			err = p.state.MarkFailed(ctx, link.BlockID)
			if err != nil {
				return nil, fmt.Errorf("could not mark block %v as failed: %w", link.BlockID, err)
			}
			outcome.Aborted = true
			outcome.FailedBlockID = link.BlockID
			break
		}

		outcome.Executed = append(outcome.Executed, block)
		p.consumer.OnBlockAccepted(block)
	}

	span.SetAttributes(
		attribute.String("outcome", outcome.Status()),
		attribute.Int("executed", len(outcome.Executed)),
	)
	p.metrics.ExecutionPipelineRun(time.Since(start), outcome.Status(), len(outcome.Executed))
	p.log.Debug().
		Hex("tip_id", logging.ID(tipID)).
		Str("outcome", outcome.Status()).
		Int("pending", len(links)).
		Int("executed", len(outcome.Executed)).
		Msg("pipeline run finished")

	return outcome, nil
}

// executeBlock validates and executes one block. It returns false if the block
// is invalid.
func (p *Pipeline) executeBlock(ctx context.Context, block *chain.Block) (bool, error) {
	blockID := block.ID()
	span, ctx := p.tracer.StartBlockSpan(ctx, blockID, trace.EXEPipelineBlock)
	defer span.End()

	log := p.log.With().
		Hex("block_id", logging.ID(blockID)).
		Uint64("height", block.Height()).
		Logger()

	valid, err := p.validator.ValidateBlockBeforeExecute(ctx, block)
	if err != nil {
		return false, fmt.Errorf("could not validate block before execution: %w", err)
	}
	if !valid {
		return false, nil
	}

	staged, err := p.blockStates.HasBlockState(blockID)
	if err != nil {
		return false, fmt.Errorf("could not check staged state: %w", err)
	}
	if staged {
		log.Debug().Msg("block state already staged, skipping execution")
	} else {
		txs, err := p.transactions.ByIDs(block.TransactionIDs)
		if err != nil {
			return false, fmt.Errorf("could not get transactions: %w", err)
		}

		executed, err := p.executor.ExecuteBlock(ctx, block.Header, txs, nil)
		if err != nil {
			return false, err
		}
		if executed.Block.ID() != blockID {
			log.Warn().
				Hex("recomputed_id", logging.Entity(executed.Block)).
				Hex("state_root", logging.ID(block.Header.StateRoot)).
				Hex("recomputed_state_root", logging.ID(executed.Block.Header.StateRoot)).
				Msg("execution result diverged from block")
			return false, nil
		}

		err = p.blockStates.SaveBlockState(executed.StateSet, executed.TransactionResults())
		if err != nil {
			return false, fmt.Errorf("could not save block state: %w", err)
		}
	}

	valid, err = p.validator.ValidateBlockAfterExecute(ctx, block)
	if err != nil {
		return false, fmt.Errorf("could not validate block after execution: %w", err)
	}
	return valid, nil
}
