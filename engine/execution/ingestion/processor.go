package ingestion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/engine/execution/pipeline"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// ProcessorState is the part of the chain state the result processor updates.
type ProcessorState interface {
	Chain() *chain.Chain
	MarkExecuted(ctx context.Context, executed []*chain.Block) (bool, error)
	Discard(ctx context.Context, tipID chain.Identifier, failedID chain.Identifier) (*protocol.PruneResult, error)
}

// ResultProcessor commits or discards the outcome of a pipeline run.
type ResultProcessor struct {
	log      zerolog.Logger
	tracer   module.Tracer
	state    ProcessorState
	consumer notifications.Consumer
}

func NewResultProcessor(
	log zerolog.Logger,
	tracer module.Tracer,
	state ProcessorState,
	consumer notifications.Consumer,
) *ResultProcessor {
	return &ResultProcessor{
		log:      log.With().Str("component", "result_processor").Logger(),
		tracer:   tracer,
		state:    state,
		consumer: consumer,
	}
}

// Process applies a pipeline outcome to the chain state:
//   - an aborted run discards its branch, the failed block stays as a tombstone
//   - a run ending above the best chain marks its blocks as executed, moves
//     the best chain and publishes the advancement
//   - an interrupted run that ends below the best chain keeps its executed
//     blocks and the branch, to be continued by a later run
//   - any other run discards its branch
//
// No errors are expected during normal operations.
func (p *ResultProcessor) Process(ctx context.Context, outcome *pipeline.Outcome) error {
	span, ctx := p.tracer.StartBlockSpan(ctx, outcome.TipID, trace.EXEProcessOutcome)
	defer span.End()

	if outcome.Aborted {
		result, err := p.state.Discard(ctx, outcome.TipID, outcome.FailedBlockID)
		if err != nil {
			return fmt.Errorf("could not discard aborted branch: %w", err)
		}
		p.log.Warn().
			Hex("tip_id", logging.ID(outcome.TipID)).
			Hex("failed_block_id", logging.ID(outcome.FailedBlockID)).
			Int("pruned", len(result.Pruned)).
			Msg("execution aborted, branch discarded")
		return nil
	}
	if len(outcome.Executed) == 0 {
		return nil
	}

	last := outcome.Executed[len(outcome.Executed)-1]
	higher := last.Height() > p.state.Chain().BestChainHeight
	if !higher && !outcome.Interrupted {
		_, err := p.state.Discard(ctx, outcome.TipID, chain.ZeroID)
		if err != nil {
			return fmt.Errorf("could not discard branch below best chain: %w", err)
		}
		return nil
	}

	advanced, err := p.state.MarkExecuted(ctx, outcome.Executed)
	if err != nil {
		return fmt.Errorf("could not mark executed blocks: %w", err)
	}
	if advanced {
		p.consumer.OnBestChainAdvanced(notifications.BestChainAdvanced{
			BlockID:        last.ID(),
			Height:         last.Height(),
			ExecutedBlocks: outcome.Executed,
		})
	}
	return nil
}
