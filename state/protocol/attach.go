package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/ef-ds/deque"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// pendingLink is a block that was just linked and whose not-linked children
// still have to be visited.
type pendingLink struct {
	blockID chain.Identifier
	height  uint64
	status  chain.ExecutionStatus
}

// AttachBlock stores the block and links it into the block graph. If the
// parent is unknown, the block waits in the not-linked set until its parent is
// attached; linking a block links all its waiting descendants as well.
//
// Attaching a known block, or a block at or below the last irreversible
// height, is a no-op reporting chain.AttachStatusNone.
//
// Expected errors during normal operations:
//   - state.InvalidExtensionError if the block belongs to another chain
func (s *State) AttachBlock(ctx context.Context, block *chain.Block) (chain.AttachStatus, error) {
	blockID := block.ID()
	span, _ := s.tracer.StartBlockSpan(ctx, blockID, trace.CHNAttachBlock)
	defer span.End()

	if block.Header.ChainID != s.chainID {
		return chain.AttachStatusNone, state.NewInvalidExtensionErrorf("block %v belongs to chain %q, expected %q", blockID, block.Header.ChainID, s.chainID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var status chain.AttachStatus
	_, err := s.mutate(func(tx *transaction.Tx, c *chain.Chain) (bool, error) {
		var err error
		status, err = s.attach(tx, c, block)
		return status != chain.AttachStatusNone, err
	})
	if err != nil {
		return chain.AttachStatusNone, fmt.Errorf("could not attach block %v: %w", blockID, err)
	}

	span.SetAttributes(attribute.String("status", status.String()))
	s.metrics.BlockAttached(status)
	s.log.Debug().
		Hex("block_id", logging.ID(blockID)).
		Uint64("height", block.Height()).
		Str("status", status.String()).
		Msg("block attached")

	return status, nil
}

func (s *State) attach(tx *transaction.Tx, c *chain.Chain, block *chain.Block) (chain.AttachStatus, error) {
	blockID := block.ID()
	height := block.Height()

	if height <= c.LastIrreversibleBlockHeight {
		return chain.AttachStatusNone, nil
	}
	if _, waiting := c.NotLinked(blockID); waiting {
		return chain.AttachStatusNone, nil
	}
	var linked bool
	err := operation.ChainBlockLinkExists(blockID, &linked)(tx.DBTxn)
	if err != nil {
		return chain.AttachStatusNone, fmt.Errorf("could not check link: %w", err)
	}
	if linked {
		return chain.AttachStatusNone, nil
	}

	parent, err := linksInTx(tx.DBTxn)(block.ParentID())
	if errors.Is(err, storage.ErrNotFound) {
		err = s.blocks.StoreTx(block)(tx)
		if err != nil {
			return chain.AttachStatusNone, fmt.Errorf("could not store block: %w", err)
		}
		c.AddNotLinked(chain.NotLinkedBlock{
			BlockID:  blockID,
			ParentID: block.ParentID(),
			Height:   height,
		})
		return chain.AttachStatusNotLinked, nil
	}
	if err != nil {
		return chain.AttachStatusNone, fmt.Errorf("could not retrieve parent link: %w", err)
	}
	if parent.Height+1 != height {
		return chain.AttachStatusNone, state.NewInvalidExtensionErrorf("block height %d does not follow parent height %d", height, parent.Height)
	}

	err = s.blocks.StoreTx(block)(tx)
	if err != nil {
		return chain.AttachStatusNone, fmt.Errorf("could not store block: %w", err)
	}

	candidate := chain.NotLinkedBlock{BlockID: blockID, ParentID: parent.BlockID, Height: height}
	status, linkStatus, err := s.link(tx, c, candidate, parent.ExecutionStatus)
	if err != nil {
		return chain.AttachStatusNone, err
	}

	cascaded, err := s.linkDescendants(tx, c, pendingLink{blockID: blockID, height: height, status: linkStatus})
	if err != nil {
		return chain.AttachStatusNone, err
	}
	return status | cascaded, nil
}

// linkDescendants links the not-linked blocks waiting for root, then the ones
// waiting for those, breadth first.
func (s *State) linkDescendants(tx *transaction.Tx, c *chain.Chain, root pendingLink) (chain.AttachStatus, error) {
	status := chain.AttachStatusNone
	queue := deque.New()
	queue.PushBack(root)

	for queue.Len() > 0 {
		next, _ := queue.PopFront()
		parent := next.(pendingLink)

		for _, waiting := range c.NotLinkedChildren(parent.blockID) {
			c.RemoveNotLinked(waiting.BlockID)

			if waiting.Height != parent.height+1 {
				s.log.Warn().
					Hex("block_id", logging.ID(waiting.BlockID)).
					Uint64("height", waiting.Height).
					Uint64("parent_height", parent.height).
					Msg("dropping not-linked block with inconsistent height")
				err := s.blocks.RemoveTx(waiting.BlockID)(tx)
				if err != nil {
					return chain.AttachStatusNone, fmt.Errorf("could not remove inconsistent block: %w", err)
				}
				continue
			}

			linkedStatus, linkStatus, err := s.link(tx, c, waiting, parent.status)
			if err != nil {
				return chain.AttachStatusNone, err
			}
			status |= linkedStatus
			queue.PushBack(pendingLink{blockID: waiting.BlockID, height: waiting.Height, status: linkStatus})
		}
	}
	return status, nil
}

// link creates the link of a block whose parent is linked and updates the
// branches. Descendants of a failed block are linked as failed tombstones,
// their bodies are dropped and they never become a branch tip.
func (s *State) link(tx *transaction.Tx, c *chain.Chain, candidate chain.NotLinkedBlock, parentStatus chain.ExecutionStatus) (chain.AttachStatus, chain.ExecutionStatus, error) {
	link := &chain.ChainBlockLink{
		BlockID:         candidate.BlockID,
		ParentID:        candidate.ParentID,
		Height:          candidate.Height,
		ExecutionStatus: chain.ExecutionStatusNone,
	}
	c.Sequence++

	if parentStatus == chain.ExecutionStatusFailed {
		link.ExecutionStatus = chain.ExecutionStatusFailed
		err := s.links.StoreTx(link)(tx)
		if err != nil {
			return chain.AttachStatusNone, 0, fmt.Errorf("could not store tombstone link: %w", err)
		}
		err = s.blocks.RemoveTx(link.BlockID)(tx)
		if err != nil {
			return chain.AttachStatusNone, 0, fmt.Errorf("could not remove descendant of failed block: %w", err)
		}
		s.log.Info().
			Hex("block_id", logging.ID(link.BlockID)).
			Hex("parent_id", logging.ID(link.ParentID)).
			Msg("block descends from a failed block, linked as failed")
		return chain.AttachStatusNewBlockLinked, chain.ExecutionStatusFailed, nil
	}

	err := s.links.StoreTx(link)(tx)
	if err != nil {
		return chain.AttachStatusNone, 0, fmt.Errorf("could not store link: %w", err)
	}

	status := chain.AttachStatusNewBlockLinked
	if link.ParentID == c.BestChainID {
		status |= chain.AttachStatusBestChainFound
	}
	c.SetBranchTip(link.ParentID, link.BlockID, link.Height)
	if link.Height > c.LongestChainHeight {
		c.LongestChainID = link.BlockID
		c.LongestChainHeight = link.Height
		status |= chain.AttachStatusLongestChainFound
	}
	return status, chain.ExecutionStatusNone, nil
}
