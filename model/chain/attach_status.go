package chain

import (
	"strings"
)

// AttachStatus reports what linking a block changed in the chain. Flags are
// combined when attaching a block cascades into previously not-linked blocks.
type AttachStatus uint8

const (
	// AttachStatusNone means nothing changed, e.g. because the block is already
	// known or lies at or below the last irreversible block.
	AttachStatusNone AttachStatus = 0
	// AttachStatusNotLinked means the block's parent is unknown, the block waits
	// in the not-linked set.
	AttachStatusNotLinked AttachStatus = 1 << iota
	// AttachStatusNewBlockLinked means at least one block was linked.
	AttachStatusNewBlockLinked
	// AttachStatusBestChainFound means a linked block directly extends the best
	// chain tip.
	AttachStatusBestChainFound
	// AttachStatusLongestChainFound means the longest chain moved to a new tip.
	AttachStatusLongestChainFound
)

// Has returns true if all flags of other are set in s.
func (s AttachStatus) Has(other AttachStatus) bool {
	return s&other == other && other != AttachStatusNone
}

// String returns the set flags joined by '|'.
func (s AttachStatus) String() string {
	if s == AttachStatusNone {
		return "none"
	}
	var names []string
	if s.Has(AttachStatusNotLinked) {
		names = append(names, "not_linked")
	}
	if s.Has(AttachStatusNewBlockLinked) {
		names = append(names, "new_block_linked")
	}
	if s.Has(AttachStatusBestChainFound) {
		names = append(names, "best_chain_found")
	}
	if s.Has(AttachStatusLongestChainFound) {
		names = append(names, "longest_chain_found")
	}
	return strings.Join(names, "|")
}
