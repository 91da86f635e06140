package validation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// Provider validates a block around its execution. A block that is not valid
// is reported by returning false. Errors are reserved for infrastructure faults.
type Provider interface {
	// ValidateBlockBeforeExecute checks the block before its transactions are
	// executed.
	ValidateBlockBeforeExecute(ctx context.Context, block *chain.Block) (bool, error)

	// ValidateBlockAfterExecute checks the block once its execution result is
	// known.
	ValidateBlockAfterExecute(ctx context.Context, block *chain.Block) (bool, error)
}

// Registry runs the registered providers in registration order. Validation
// stops at the first provider rejecting the block.
type Registry struct {
	log       zerolog.Logger
	providers []Provider
}

var _ Provider = (*Registry)(nil)

func NewRegistry(log zerolog.Logger, providers ...Provider) *Registry {
	return &Registry{
		log:       log.With().Str("component", "validation").Logger(),
		providers: providers,
	}
}

// Register appends a provider. It must not be called concurrently with
// validation.
func (r *Registry) Register(provider Provider) {
	r.providers = append(r.providers, provider)
}

func (r *Registry) ValidateBlockBeforeExecute(ctx context.Context, block *chain.Block) (bool, error) {
	for i, provider := range r.providers {
		valid, err := provider.ValidateBlockBeforeExecute(ctx, block)
		if err != nil {
			return false, fmt.Errorf("provider %d could not validate block %v before execution: %w", i, block.ID(), err)
		}
		if !valid {
			r.log.Warn().
				Hex("block_id", logging.Entity(block)).
				Uint64("height", block.Height()).
				Int("provider", i).
				Msg("block rejected before execution")
			return false, nil
		}
	}
	return true, nil
}

func (r *Registry) ValidateBlockAfterExecute(ctx context.Context, block *chain.Block) (bool, error) {
	for i, provider := range r.providers {
		valid, err := provider.ValidateBlockAfterExecute(ctx, block)
		if err != nil {
			return false, fmt.Errorf("provider %d could not validate block %v after execution: %w", i, block.ID(), err)
		}
		if !valid {
			r.log.Warn().
				Hex("block_id", logging.Entity(block)).
				Uint64("height", block.Height()).
				Int("provider", i).
				Msg("block rejected after execution")
			return false, nil
		}
	}
	return true, nil
}
