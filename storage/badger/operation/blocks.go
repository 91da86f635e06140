package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// InsertBlock inserts a block keyed by its id.
// Error returns:
//   - storage.ErrAlreadyExists if the block is already stored
func InsertBlock(blockID chain.Identifier, block *chain.Block) func(*badger.Txn) error {
	return insert(makePrefix(codeBlock, blockID), block)
}

// RetrieveBlock retrieves a block by its id.
// Error returns:
//   - storage.ErrNotFound if the block is unknown
func RetrieveBlock(blockID chain.Identifier, block *chain.Block) func(*badger.Txn) error {
	return retrieve(makePrefix(codeBlock, blockID), block)
}

// BlockExists checks whether a block is stored.
func BlockExists(blockID chain.Identifier, blockExists *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeBlock, blockID), blockExists)
}

// RemoveBlock removes a block, this is a no-op for unknown blocks.
func RemoveBlock(blockID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeBlock, blockID))
}
