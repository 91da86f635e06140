package state

import (
	"fmt"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// LinkLookup resolves the chain block link of a block. Implementations either
// read committed state or the pending writes of an open transaction.
type LinkLookup func(blockID chain.Identifier) (*chain.ChainBlockLink, error)

// TraverseBackward visits the links from the start block (inclusive) towards
// genesis, following the parent ids. The walk ends after the first link for
// which shouldContinue returns false.
func TraverseBackward(lookup LinkLookup, startBlockID chain.Identifier, visitor func(*chain.ChainBlockLink) error, shouldContinue func(*chain.ChainBlockLink) bool) error {
	blockID := startBlockID
	for {
		link, err := lookup(blockID)
		if err != nil {
			return fmt.Errorf("could not get link (%x): %w", blockID, err)
		}

		err = visitor(link)
		if err != nil {
			return err
		}

		if !shouldContinue(link) {
			return nil
		}

		blockID = link.ParentID
	}
}

// TraverseForward collects the same segment as TraverseBackward and visits it
// in increasing height order. The start block is visited last.
func TraverseForward(lookup LinkLookup, startBlockID chain.Identifier, visitor func(*chain.ChainBlockLink) error, shouldContinue func(*chain.ChainBlockLink) bool) error {
	var links []*chain.ChainBlockLink
	err := TraverseBackward(lookup, startBlockID, func(link *chain.ChainBlockLink) error {
		links = append(links, link)
		return nil
	}, shouldContinue)
	if err != nil {
		return err
	}

	for i := len(links) - 1; i >= 0; i-- {
		err = visitor(links[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// AncestorAtHeight returns the link at the given height on the path from the
// start block down to genesis.
// Expected errors during normal operations:
//   - ErrUnknownAncestor if the start block is below the height
func AncestorAtHeight(lookup LinkLookup, startBlockID chain.Identifier, height uint64) (*chain.ChainBlockLink, error) {
	var ancestor *chain.ChainBlockLink
	err := TraverseBackward(lookup, startBlockID, func(link *chain.ChainBlockLink) error {
		ancestor = link
		return nil
	}, func(link *chain.ChainBlockLink) bool {
		return link.Height > height
	})
	if err != nil {
		return nil, err
	}
	if ancestor.Height != height {
		return nil, fmt.Errorf("block %v at height %d is below %d: %w", startBlockID, ancestor.Height, height, ErrUnknownAncestor)
	}
	return ancestor, nil
}
