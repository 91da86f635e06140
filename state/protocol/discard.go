package protocol

import (
	"context"
	"fmt"

	"github.com/ef-ds/deque"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// Discard removes the dead path ending at tipID. If failedID is set, the
// failed block keeps its link as a tombstone and all its descendants are
// deleted; the walk then continues below the failed block. Walking down stops
// at the first successfully executed block or at a block that still has other
// live children. The surviving ancestor becomes a branch tip again if nothing
// else extends it, and the longest chain is recomputed.
//
// No errors are expected during normal operations.
func (s *State) Discard(_ context.Context, tipID chain.Identifier, failedID chain.Identifier) (*PruneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *PruneResult
	updated, err := s.mutate(func(tx *transaction.Tx, c *chain.Chain) (bool, error) {
		result = &PruneResult{}
		err := s.discard(tx, c, tipID, failedID, result)
		return true, err
	})
	if err != nil {
		return nil, fmt.Errorf("could not discard branch %v: %w", tipID, err)
	}

	s.metrics.BlocksPruned(metrics.PruneReasonDiscarded, len(result.Pruned)+len(result.Tombstoned))
	s.log.Info().
		Hex("tip_id", logging.ID(tipID)).
		Hex("failed_id", logging.ID(failedID)).
		Int("pruned", len(result.Pruned)).
		Hex("longest_chain_id", logging.ID(updated.LongestChainID)).
		Uint64("longest_chain_height", updated.LongestChainHeight).
		Msg("branch discarded")

	return result, nil
}

func (s *State) discard(tx *transaction.Tx, c *chain.Chain, tipID chain.Identifier, failedID chain.Identifier, result *PruneResult) error {
	lookup := linksInTx(tx.DBTxn)

	current := tipID
	if failedID != chain.ZeroID {
		failed, err := lookup(failedID)
		if err != nil {
			return fmt.Errorf("could not retrieve failed link: %w", err)
		}
		err = s.removeDescendants(tx, c, failedID, result)
		if err != nil {
			return err
		}
		err = s.removeBlockTx(tx, failed, true)
		if err != nil {
			return err
		}
		result.Tombstoned = append(result.Tombstoned, failedID)
		result.removeBranch(c, failedID)
		current = failed.ParentID
	}

	for {
		link, err := lookup(current)
		if err != nil {
			return fmt.Errorf("could not retrieve link on dead path: %w", err)
		}
		if link.IsExecuted() {
			break
		}
		live, err := s.hasLiveChildren(tx, current)
		if err != nil {
			return err
		}
		if live {
			break
		}

		err = s.removeBlockTx(tx, link, false)
		if err != nil {
			return err
		}
		result.Pruned = append(result.Pruned, link.BlockID)
		result.removeBranch(c, link.BlockID)
		current = link.ParentID
	}

	ancestor, err := lookup(current)
	if err != nil {
		return fmt.Errorf("could not retrieve surviving ancestor: %w", err)
	}
	live, err := s.hasLiveChildren(tx, current)
	if err != nil {
		return err
	}
	if !live {
		c.AddBranch(ancestor.BlockID, ancestor.Height)
	}

	recomputeLongest(c)
	return nil
}

// removeDescendants deletes every linked descendant of the block, breadth
// first.
func (s *State) removeDescendants(tx *transaction.Tx, c *chain.Chain, blockID chain.Identifier, result *PruneResult) error {
	lookup := linksInTx(tx.DBTxn)
	queue := deque.New()
	queue.PushBack(blockID)

	for queue.Len() > 0 {
		next, _ := queue.PopFront()
		children, err := childrenInTx(tx.DBTxn, next.(chain.Identifier))
		if err != nil {
			return err
		}
		for _, childID := range children {
			child, err := lookup(childID)
			if err != nil {
				return fmt.Errorf("could not retrieve descendant link: %w", err)
			}
			err = s.removeBlockTx(tx, child, false)
			if err != nil {
				return err
			}
			result.Pruned = append(result.Pruned, childID)
			result.removeBranch(c, childID)
			queue.PushBack(childID)
		}
	}
	return nil
}

// hasLiveChildren returns true if any child of the block is not failed.
func (s *State) hasLiveChildren(tx *transaction.Tx, blockID chain.Identifier) (bool, error) {
	children, err := childrenInTx(tx.DBTxn, blockID)
	if err != nil {
		return false, err
	}
	lookup := linksInTx(tx.DBTxn)
	for _, childID := range children {
		child, err := lookup(childID)
		if err != nil {
			return false, fmt.Errorf("could not retrieve child link: %w", err)
		}
		if !child.IsFailed() {
			return true, nil
		}
	}
	return false, nil
}
