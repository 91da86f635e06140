package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
)

// DefaultMaxFutureDrift is how far ahead of the local clock a block timestamp
// may be.
const DefaultMaxFutureDrift = 4 * time.Second

// HeaderValidator checks the chain id and the timestamp of a block.
type HeaderValidator struct {
	chainID        chain.ChainID
	blocks         storage.Blocks
	maxFutureDrift time.Duration
	now            func() time.Time
}

var _ Provider = (*HeaderValidator)(nil)

func NewHeaderValidator(chainID chain.ChainID, blocks storage.Blocks, maxFutureDrift time.Duration) *HeaderValidator {
	return &HeaderValidator{
		chainID:        chainID,
		blocks:         blocks,
		maxFutureDrift: maxFutureDrift,
		now:            time.Now,
	}
}

func (v *HeaderValidator) ValidateBlockBeforeExecute(_ context.Context, block *chain.Block) (bool, error) {
	header := block.Header
	if header.ChainID != v.chainID {
		return false, nil
	}
	if header.Timestamp.After(v.now().Add(v.maxFutureDrift)) {
		return false, nil
	}

	parent, err := v.blocks.ByID(header.ParentID)
	if err != nil {
		return false, fmt.Errorf("could not get parent %v: %w", header.ParentID, err)
	}
	if header.Height != parent.Height()+1 {
		return false, nil
	}
	if !header.Timestamp.After(parent.Header.Timestamp) {
		return false, nil
	}
	return true, nil
}

func (v *HeaderValidator) ValidateBlockAfterExecute(context.Context, *chain.Block) (bool, error) {
	return true, nil
}
