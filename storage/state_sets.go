package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// BlockStateSets represents persistent storage for the staged state diffs of
// executed but not yet irreversible blocks.
type BlockStateSets interface {

	// StoreTx inserts the state set of a block. Storing the same block twice
	// is a no-op.
	StoreTx(set *chain.BlockStateSet) func(*transaction.Tx) error

	// ByBlockID returns the state set of the given block.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the block has no staged state
	ByBlockID(blockID chain.Identifier) (*chain.BlockStateSet, error)

	// Exists returns true if the block has a staged state set.
	Exists(blockID chain.Identifier) (bool, error)

	// RemoveTx deletes the state set of the given block.
	RemoveTx(blockID chain.Identifier) func(*transaction.Tx) error
}

// WorldState represents the persistent, irreversible key-value state.
type WorldState interface {

	// Get returns the value stored under key.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the key is not set
	Get(key string) ([]byte, error)

	// ApplyTx applies the changes and deletes of the set and moves the merged
	// marker to the set's block.
	ApplyTx(set *chain.BlockStateSet) func(*transaction.Tx) error

	// MergedBlock returns the id and height of the last block whose state set
	// was merged.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the world state was never initialised
	MergedBlock() (chain.Identifier, uint64, error)
}
