package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// Blocks represents persistent storage for blocks.
type Blocks interface {

	// Store will atomically store a block.
	Store(block *chain.Block) error

	// StoreTx allows us to store a new block as part of a DB transaction, while
	// still going through the caching layer.
	StoreTx(block *chain.Block) func(*transaction.Tx) error

	// ByID returns the block with the given id.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no block with the given id is stored
	ByID(blockID chain.Identifier) (*chain.Block, error)

	// Exists returns true if the block is stored.
	Exists(blockID chain.Identifier) (bool, error)

	// RemoveTx deletes the block as part of a DB transaction and evicts it from
	// the cache once the transaction succeeded. Removing an unknown block is a
	// no-op.
	RemoveTx(blockID chain.Identifier) func(*transaction.Tx) error
}
