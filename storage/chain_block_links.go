package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// ChainBlockLinks represents persistent storage for the links placing blocks
// into the block graph. Every link is indexed by its parent and by its height.
type ChainBlockLinks interface {

	// ByBlockID returns the link of the given block.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the block is not linked
	ByBlockID(blockID chain.Identifier) (*chain.ChainBlockLink, error)

	// StoreTx inserts a link together with its children and height index
	// entries.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if the block is already linked
	StoreTx(link *chain.ChainBlockLink) func(*transaction.Tx) error

	// SetExecutionStatusTx changes the execution status of a link.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the block is not linked
	//   - storage.ErrInvalidStatusTransition if the link already has a terminal status
	SetExecutionStatusTx(blockID chain.Identifier, status chain.ExecutionStatus) func(*transaction.Tx) error

	// RemoveTx deletes a link and its index entries.
	RemoveTx(link *chain.ChainBlockLink) func(*transaction.Tx) error

	// ChildrenOf returns the ids of all linked children of the given block.
	ChildrenOf(parentID chain.Identifier) ([]chain.Identifier, error)

	// AtHeight returns the ids of all linked blocks at the given height.
	AtHeight(height uint64) ([]chain.Identifier, error)
}
