package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// InsertChainBlockLink inserts the link of a block.
// Error returns:
//   - storage.ErrAlreadyExists if the block is already linked
func InsertChainBlockLink(link *chain.ChainBlockLink) func(*badger.Txn) error {
	return insert(makePrefix(codeChainBlockLink, link.BlockID), link)
}

// UpdateChainBlockLink replaces the link of a block.
// Error returns:
//   - storage.ErrNotFound if the block is not linked
func UpdateChainBlockLink(link *chain.ChainBlockLink) func(*badger.Txn) error {
	return update(makePrefix(codeChainBlockLink, link.BlockID), link)
}

// RetrieveChainBlockLink retrieves the link of a block.
// Error returns:
//   - storage.ErrNotFound if the block is not linked
func RetrieveChainBlockLink(blockID chain.Identifier, link *chain.ChainBlockLink) func(*badger.Txn) error {
	return retrieve(makePrefix(codeChainBlockLink, blockID), link)
}

// ChainBlockLinkExists checks whether the block is linked.
func ChainBlockLinkExists(blockID chain.Identifier, linkExists *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeChainBlockLink, blockID), linkExists)
}

// RemoveChainBlockLink removes the link of a block.
func RemoveChainBlockLink(blockID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeChainBlockLink, blockID))
}

// IndexChild adds the child to the children index of its parent.
func IndexChild(parentID chain.Identifier, childID chain.Identifier) func(*badger.Txn) error {
	return upsert(makePrefix(codeIndexChild, parentID, childID), nil)
}

// RemoveChildIndex removes the child from the children index of its parent.
func RemoveChildIndex(parentID chain.Identifier, childID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeIndexChild, parentID, childID))
}

// LookupChildren retrieves the ids of all indexed children of a block, in key
// order.
func LookupChildren(parentID chain.Identifier, childIDs *[]chain.Identifier) func(*badger.Txn) error {
	return lookupIDs(makePrefix(codeIndexChild, parentID), childIDs)
}

// IndexHeight adds the block to the height index.
func IndexHeight(height uint64, blockID chain.Identifier) func(*badger.Txn) error {
	return upsert(makePrefix(codeIndexHeight, height, blockID), nil)
}

// RemoveHeightIndex removes the block from the height index.
func RemoveHeightIndex(height uint64, blockID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeIndexHeight, height, blockID))
}

// LookupBlocksAtHeight retrieves the ids of all indexed blocks at a height.
func LookupBlocksAtHeight(height uint64, blockIDs *[]chain.Identifier) func(*badger.Txn) error {
	return lookupIDs(makePrefix(codeIndexHeight, height), blockIDs)
}
