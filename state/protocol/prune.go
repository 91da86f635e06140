package protocol

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// PruneResult lists what a discard or an irreversibility advance removed.
type PruneResult struct {
	// Pruned are the blocks whose body, link and execution data were deleted.
	Pruned []chain.Identifier
	// Tombstoned are failed blocks that keep their link but lost their data.
	Tombstoned []chain.Identifier
	// RemovedBranches are the tips dropped from the chain's branches.
	RemovedBranches []chain.Identifier
	// NotLinked are the dropped blocks that were waiting for a parent.
	NotLinked []chain.Identifier
	// Irreversible are the blocks that became irreversible, oldest first.
	Irreversible []chain.Identifier
}

// IsEmpty returns true if nothing was removed and nothing became irreversible.
func (r *PruneResult) IsEmpty() bool {
	return len(r.Pruned) == 0 &&
		len(r.Tombstoned) == 0 &&
		len(r.RemovedBranches) == 0 &&
		len(r.NotLinked) == 0 &&
		len(r.Irreversible) == 0
}

// removeBranch drops the tip from the chain and records it.
func (r *PruneResult) removeBranch(c *chain.Chain, tipID chain.Identifier) {
	if c.RemoveBranch(tipID) {
		r.RemovedBranches = append(r.RemovedBranches, tipID)
	}
}

// recomputeLongest points the longest chain at the highest remaining tip.
func recomputeLongest(c *chain.Chain) {
	longest, ok := c.LongestBranch()
	if !ok {
		c.LongestChainID = c.BestChainID
		c.LongestChainHeight = c.BestChainHeight
		return
	}
	c.LongestChainID = longest.TipID
	c.LongestChainHeight = longest.Height
}
