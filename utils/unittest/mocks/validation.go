package mocks

import (
	"context"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// ValidationProvider validates blocks with the configured functions. A nil
// function accepts every block.
type ValidationProvider struct {
	Before func(block *chain.Block) (bool, error)
	After  func(block *chain.Block) (bool, error)
}

func (p *ValidationProvider) ValidateBlockBeforeExecute(_ context.Context, block *chain.Block) (bool, error) {
	if p.Before == nil {
		return true, nil
	}
	return p.Before(block)
}

func (p *ValidationProvider) ValidateBlockAfterExecute(_ context.Context, block *chain.Block) (bool, error) {
	if p.After == nil {
		return true, nil
	}
	return p.After(block)
}

// RejectAfterExecute returns a provider failing post-execution validation of
// the given block.
func RejectAfterExecute(blockID chain.Identifier) *ValidationProvider {
	return &ValidationProvider{
		After: func(block *chain.Block) (bool, error) {
			return block.ID() != blockID, nil
		},
	}
}
