package protocol

import (
	"context"
	"fmt"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// NotExecutedLinks returns the links from the last successfully executed
// ancestor of tipID (exclusive) up to tipID, oldest first. The result is empty
// if the tip itself was executed.
//
// No errors are expected during normal operations. Reaching a failed link
// means the tip belongs to a discarded branch, which is reported as an
// exception.
func (s *State) NotExecutedLinks(tipID chain.Identifier) ([]*chain.ChainBlockLink, error) {
	var path []*chain.ChainBlockLink
	err := state.TraverseForward(s.links.ByBlockID, tipID, func(link *chain.ChainBlockLink) error {
		if link.IsFailed() {
			return irrecoverable.NewExceptionf("block %v on the path to %v is failed", link.BlockID, tipID)
		}
		if !link.IsExecuted() {
			path = append(path, link)
		}
		return nil
	}, func(link *chain.ChainBlockLink) bool {
		return !link.IsExecuted()
	})
	if err != nil {
		return nil, fmt.Errorf("could not collect not executed links of %v: %w", tipID, err)
	}
	return path, nil
}

// MarkFailed sets the execution status of a block to failed. The chain record
// is not changed; the branch is discarded separately.
//
// Expected errors during normal operations:
//   - storage.ErrInvalidStatusTransition if the block already has a terminal status
func (s *State) MarkFailed(_ context.Context, blockID chain.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := transaction.Update(s.db, s.links.SetExecutionStatusTx(blockID, chain.ExecutionStatusFailed))
	if err != nil {
		return fmt.Errorf("could not mark block %v as failed: %w", blockID, err)
	}
	s.log.Warn().Hex("block_id", logging.ID(blockID)).Msg("block marked as failed")
	return nil
}

// MarkExecuted sets the execution status of the given consecutive blocks to
// success. If the last block is higher than the current best chain, it becomes
// the new best chain tip. Returns whether the best chain moved.
//
// No errors are expected during normal operations.
func (s *State) MarkExecuted(_ context.Context, executed []*chain.Block) (bool, error) {
	if len(executed) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last := executed[len(executed)-1]
	updated, err := s.mutate(func(tx *transaction.Tx, c *chain.Chain) (bool, error) {
		for _, block := range executed {
			err := s.links.SetExecutionStatusTx(block.ID(), chain.ExecutionStatusSuccess)(tx)
			if err != nil {
				return false, fmt.Errorf("could not mark block %v as executed: %w", block.ID(), err)
			}
		}
		if last.Height() <= c.BestChainHeight {
			return false, nil
		}
		c.BestChainID = last.ID()
		c.BestChainHeight = last.Height()
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if updated == nil {
		return false, nil
	}

	s.log.Info().
		Hex("best_chain_id", logging.ID(updated.BestChainID)).
		Uint64("best_chain_height", updated.BestChainHeight).
		Int("executed_blocks", len(executed)).
		Msg("best chain advanced")
	return true, nil
}
