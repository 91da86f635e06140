package chain

import (
	"sort"
)

// Branch is the tip of a maximal chain of linked blocks.
type Branch struct {
	TipID  Identifier
	Height uint64
	// ReachedAt is the chain sequence number at which the tip last moved. Among
	// tips of equal height the lowest value was seen first.
	ReachedAt uint64
}

// NotLinkedBlock is a stored block whose parent is not linked yet.
type NotLinkedBlock struct {
	BlockID  Identifier
	ParentID Identifier
	Height   uint64
}

// Chain is the aggregate describing the block graph of one logical chain.
//
// Invariants:
//   - LongestChainHeight >= BestChainHeight >= LastIrreversibleBlockHeight
//   - every block from BestChainID down to the LIB has a Success link
//   - Branches never contain a tip at or below the LIB unless it is the LIB
type Chain struct {
	ID             ChainID
	GenesisBlockID Identifier

	// BestChainID is the deepest block executed successfully end-to-end.
	BestChainID     Identifier
	BestChainHeight uint64

	// LongestChainID is the deepest linked block regardless of execution.
	LongestChainID     Identifier
	LongestChainHeight uint64

	LastIrreversibleBlockID     Identifier
	LastIrreversibleBlockHeight uint64

	Branches        []Branch
	NotLinkedBlocks []NotLinkedBlock

	// Sequence increases with every linked block and orders branch tips.
	Sequence uint64
}

// Copy returns a deep copy of the chain. Snapshots handed to readers are
// copies, so that the single writer can keep mutating its own instance.
func (c *Chain) Copy() *Chain {
	cp := *c
	cp.Branches = make([]Branch, len(c.Branches))
	copy(cp.Branches, c.Branches)
	cp.NotLinkedBlocks = make([]NotLinkedBlock, len(c.NotLinkedBlocks))
	copy(cp.NotLinkedBlocks, c.NotLinkedBlocks)
	return &cp
}

// Branch returns the branch whose tip is the given block.
func (c *Chain) Branch(tipID Identifier) (Branch, bool) {
	for _, b := range c.Branches {
		if b.TipID == tipID {
			return b, true
		}
	}
	return Branch{}, false
}

// IsBranchTip returns true if the block is the tip of a branch.
func (c *Chain) IsBranchTip(blockID Identifier) bool {
	_, ok := c.Branch(blockID)
	return ok
}

// SetBranchTip moves the tip of the branch ending at oldTip to newTip. If
// oldTip is not a tip, a new branch is added.
func (c *Chain) SetBranchTip(oldTip Identifier, newTip Identifier, height uint64) {
	for i, b := range c.Branches {
		if b.TipID == oldTip {
			c.Branches[i] = Branch{TipID: newTip, Height: height, ReachedAt: c.Sequence}
			return
		}
	}
	c.Branches = append(c.Branches, Branch{TipID: newTip, Height: height, ReachedAt: c.Sequence})
}

// AddBranch adds a tip if it is not already present.
func (c *Chain) AddBranch(tipID Identifier, height uint64) {
	if c.IsBranchTip(tipID) {
		return
	}
	c.Branches = append(c.Branches, Branch{TipID: tipID, Height: height, ReachedAt: c.Sequence})
}

// RemoveBranch removes the branch with the given tip, returns false if there
// was none.
func (c *Chain) RemoveBranch(tipID Identifier) bool {
	for i, b := range c.Branches {
		if b.TipID == tipID {
			c.Branches = append(c.Branches[:i], c.Branches[i+1:]...)
			return true
		}
	}
	return false
}

// LongestBranch returns the highest tip. Ties go to the best chain tip first,
// then to the tip that reached the height first.
func (c *Chain) LongestBranch() (Branch, bool) {
	if len(c.Branches) == 0 {
		return Branch{}, false
	}
	branches := make([]Branch, len(c.Branches))
	copy(branches, c.Branches)
	sort.SliceStable(branches, func(i, j int) bool {
		if branches[i].Height != branches[j].Height {
			return branches[i].Height > branches[j].Height
		}
		iBest := branches[i].TipID == c.BestChainID
		jBest := branches[j].TipID == c.BestChainID
		if iBest != jBest {
			return iBest
		}
		return branches[i].ReachedAt < branches[j].ReachedAt
	})
	return branches[0], true
}

// NotLinkedChildren returns the not-linked blocks waiting for the given parent.
func (c *Chain) NotLinkedChildren(parentID Identifier) []NotLinkedBlock {
	var children []NotLinkedBlock
	for _, nl := range c.NotLinkedBlocks {
		if nl.ParentID == parentID {
			children = append(children, nl)
		}
	}
	return children
}

// NotLinked returns the not-linked entry of the given block.
func (c *Chain) NotLinked(blockID Identifier) (NotLinkedBlock, bool) {
	for _, nl := range c.NotLinkedBlocks {
		if nl.BlockID == blockID {
			return nl, true
		}
	}
	return NotLinkedBlock{}, false
}

// AddNotLinked records a block waiting for its parent.
func (c *Chain) AddNotLinked(nl NotLinkedBlock) {
	if _, ok := c.NotLinked(nl.BlockID); ok {
		return
	}
	c.NotLinkedBlocks = append(c.NotLinkedBlocks, nl)
}

// RemoveNotLinked drops the not-linked entry of the given block.
func (c *Chain) RemoveNotLinked(blockID Identifier) bool {
	for i, nl := range c.NotLinkedBlocks {
		if nl.BlockID == blockID {
			c.NotLinkedBlocks = append(c.NotLinkedBlocks[:i], c.NotLinkedBlocks[i+1:]...)
			return true
		}
	}
	return false
}
