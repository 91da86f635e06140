package logevents

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// TransactionResults provides the stored results of executed blocks.
type TransactionResults interface {
	ByBlockID(blockID chain.Identifier) ([]*chain.TransactionResult, error)
}

// Registry dispatches the log events of blocks joining the best chain to the
// registered processors, in registration order. It subscribes to execution
// notifications and ignores everything but best chain advances.
type Registry struct {
	notifications.NoopConsumer

	log     zerolog.Logger
	results TransactionResults

	mu         sync.RWMutex
	processors []Processor
}

var _ notifications.Consumer = (*Registry)(nil)

func NewRegistry(log zerolog.Logger, results TransactionResults) *Registry {
	return &Registry{
		log:     log.With().Str("component", "log_event_processors").Logger(),
		results: results,
	}
}

// Register adds a processor. Processors registered while a block is being
// dispatched see the following blocks only.
func (r *Registry) Register(processor Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, processor)
}

func (r *Registry) OnBestChainAdvanced(event notifications.BestChainAdvanced) {
	r.mu.RLock()
	processors := r.processors
	r.mu.RUnlock()
	if len(processors) == 0 {
		return
	}

	for _, block := range event.ExecutedBlocks {
		err := r.ProcessBlock(block, processors)
		if err != nil {
			r.log.Error().Err(err).
				Hex("block_id", logging.Entity(block)).
				Uint64("height", block.Height()).
				Msg("log event processing failed")
		}
	}
}

// ProcessBlock runs the given processors over the events of the block. The
// block bloom is tested first, results are only read when at least one
// filter may match. A failing processor does not prevent the following ones
// from running, all failures are returned together.
func (r *Registry) ProcessBlock(block *chain.Block, processors []Processor) error {
	var candidates []Processor
	for _, p := range processors {
		f := p.Filter()
		if chain.BloomMayContainEvent(block.Header.Bloom, f.Address, f.Name) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	blockID := block.ID()
	results, err := r.results.ByBlockID(blockID)
	if err != nil {
		return fmt.Errorf("could not retrieve transaction results of block %v: %w", blockID, err)
	}

	var errs *multierror.Error
	for _, p := range candidates {
		events := collect(block, results, p.Filter())
		if len(events) == 0 {
			continue
		}
		err := p.Process(block, events)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("processor for %s/%s failed: %w", p.Filter().Address, p.Filter().Name, err))
		}
	}
	return errs.ErrorOrNil()
}

func collect(block *chain.Block, results []*chain.TransactionResult, filter Filter) []Event {
	var events []Event
	for i, result := range results {
		if result.Status != chain.TransactionStatusMined {
			continue
		}
		if !chain.BloomMayContainEvent(result.Bloom, filter.Address, filter.Name) {
			continue
		}
		for _, log := range result.Logs {
			if log.Address != filter.Address || log.Name != filter.Name {
				continue
			}
			events = append(events, Event{
				LogEvent:      log,
				BlockID:       result.BlockID,
				Height:        block.Height(),
				TransactionID: result.TransactionID,
				Index:         i,
			})
		}
	}
	return events
}
