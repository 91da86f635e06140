package protocol

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// IrreversibleHook returns additional operations to commit together with an
// irreversibility advance. It receives the links that became irreversible,
// oldest first.
type IrreversibleHook func(irreversible []*chain.ChainBlockLink) func(*transaction.Tx) error

// AdvanceLIB moves the last irreversible block to libID at libHeight and
// prunes everything that can no longer become canonical:
//   - every branch whose tip does not descend from libID, down to its fork
//     point on the irreversible path
//   - every other link in the height range (previous LIB, libHeight]
//   - not-linked blocks that can only connect at or below libHeight
//
// The call is a no-op returning an empty result if libHeight does not
// increase the current height or libID is not on the best chain.
//
// No errors are expected during normal operations.
func (s *State) AdvanceLIB(ctx context.Context, libID chain.Identifier, libHeight uint64, hook IrreversibleHook) (*PruneResult, error) {
	span, _ := s.tracer.StartBlockSpan(ctx, libID, trace.CHNAdvanceLIB)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var result *PruneResult
	updated, err := s.mutate(func(tx *transaction.Tx, c *chain.Chain) (bool, error) {
		result = &PruneResult{}
		return s.advanceLIB(tx, c, libID, libHeight, hook, result)
	})
	if err != nil {
		return nil, fmt.Errorf("could not advance last irreversible block to %v: %w", libID, err)
	}
	if updated == nil {
		return result, nil
	}

	span.SetAttributes(
		attribute.Int("pruned", len(result.Pruned)),
		attribute.Int("irreversible", len(result.Irreversible)),
	)
	s.metrics.BlocksPruned(metrics.PruneReasonIrreversible, len(result.Pruned))
	s.metrics.BlocksPruned(metrics.PruneReasonNotLinked, len(result.NotLinked))
	s.log.Info().
		Hex("lib_id", logging.ID(libID)).
		Uint64("lib_height", libHeight).
		Int("pruned", len(result.Pruned)).
		Int("pruned_not_linked", len(result.NotLinked)).
		Int("branches", len(updated.Branches)).
		Msg("last irreversible block advanced")

	return result, nil
}

func (s *State) advanceLIB(tx *transaction.Tx, c *chain.Chain, libID chain.Identifier, libHeight uint64, hook IrreversibleHook, result *PruneResult) (bool, error) {
	oldHeight := c.LastIrreversibleBlockHeight
	if libHeight <= oldHeight {
		return false, nil
	}
	if libHeight > c.BestChainHeight {
		s.log.Warn().Uint64("lib_height", libHeight).Uint64("best_chain_height", c.BestChainHeight).
			Msg("ignoring irreversible block above the best chain")
		return false, nil
	}

	lookup := linksInTx(tx.DBTxn)
	onBest, err := state.AncestorAtHeight(lookup, c.BestChainID, libHeight)
	if err != nil {
		return false, fmt.Errorf("could not resolve best chain ancestor: %w", err)
	}
	if onBest.BlockID != libID {
		s.log.Warn().Hex("lib_id", logging.ID(libID)).Hex("best_chain_ancestor", logging.ID(onBest.BlockID)).
			Msg("ignoring irreversible block that is not on the best chain")
		return false, nil
	}

	// the path (old LIB, new LIB], indexed by height
	canonical := make(map[uint64]chain.Identifier)
	var irreversible []*chain.ChainBlockLink
	err = state.TraverseForward(lookup, libID, func(link *chain.ChainBlockLink) error {
		canonical[link.Height] = link.BlockID
		irreversible = append(irreversible, link)
		result.Irreversible = append(result.Irreversible, link.BlockID)
		return nil
	}, func(link *chain.ChainBlockLink) bool {
		return link.Height > oldHeight+1
	})
	if err != nil {
		return false, fmt.Errorf("could not collect irreversible path: %w", err)
	}

	// decide on all branches before deleting anything, branches share links
	var dead []chain.Branch
	for _, branch := range c.Branches {
		if branch.Height >= libHeight {
			ancestor, err := state.AncestorAtHeight(lookup, branch.TipID, libHeight)
			if err != nil {
				return false, fmt.Errorf("could not resolve ancestor of branch %v: %w", branch.TipID, err)
			}
			if ancestor.BlockID == libID {
				continue
			}
		}
		dead = append(dead, branch)
	}

	removed := make(map[chain.Identifier]struct{})
	for _, branch := range dead {
		current := branch.TipID
		for {
			if _, ok := removed[current]; ok {
				break
			}
			link, err := lookup(current)
			if err != nil {
				return false, fmt.Errorf("could not retrieve link of dead branch: %w", err)
			}
			if link.Height <= oldHeight || (link.Height <= libHeight && canonical[link.Height] == link.BlockID) {
				break
			}
			err = s.removeBlockTx(tx, link, false)
			if err != nil {
				return false, err
			}
			removed[current] = struct{}{}
			result.Pruned = append(result.Pruned, current)
			current = link.ParentID
		}
		result.removeBranch(c, branch.TipID)
	}

	// sweep what is not reachable from any tip, e.g. tombstones
	for height := oldHeight + 1; height <= libHeight; height++ {
		var atHeight []chain.Identifier
		err = operation.LookupBlocksAtHeight(height, &atHeight)(tx.DBTxn)
		if err != nil {
			return false, fmt.Errorf("could not look up blocks at height %d: %w", height, err)
		}
		for _, blockID := range atHeight {
			if _, ok := removed[blockID]; ok || blockID == canonical[height] {
				continue
			}
			link, err := lookup(blockID)
			if err != nil {
				return false, fmt.Errorf("could not retrieve link at height %d: %w", height, err)
			}
			err = s.removeBlockTx(tx, link, false)
			if err != nil {
				return false, err
			}
			removed[blockID] = struct{}{}
			result.Pruned = append(result.Pruned, blockID)
		}
	}

	err = s.pruneNotLinked(tx, c, libHeight, removed, result)
	if err != nil {
		return false, err
	}

	if hook != nil {
		err = hook(irreversible)(tx)
		if err != nil {
			return false, fmt.Errorf("could not apply irreversible hook: %w", err)
		}
	}

	c.LastIrreversibleBlockID = libID
	c.LastIrreversibleBlockHeight = libHeight
	recomputeLongest(c)
	return true, nil
}

// pruneNotLinked drops not-linked blocks whose chain of missing parents can
// only reconnect at or below the new LIB height, or to a pruned block.
func (s *State) pruneNotLinked(tx *transaction.Tx, c *chain.Chain, libHeight uint64, removed map[chain.Identifier]struct{}, result *PruneResult) error {
	var garbage []chain.Identifier
	for _, waiting := range c.NotLinkedBlocks {
		root := waiting
		for i := 0; i < len(c.NotLinkedBlocks); i++ {
			parent, ok := c.NotLinked(root.ParentID)
			if !ok {
				break
			}
			root = parent
		}

		_, parentPruned := removed[root.ParentID]
		if waiting.Height <= libHeight || root.Height <= libHeight+1 || parentPruned {
			garbage = append(garbage, waiting.BlockID)
		}
	}

	for _, blockID := range garbage {
		err := s.blocks.RemoveTx(blockID)(tx)
		if err != nil {
			return fmt.Errorf("could not remove not-linked block %v: %w", blockID, err)
		}
		c.RemoveNotLinked(blockID)
		result.NotLinked = append(result.NotLinked, blockID)
	}
	return nil
}
