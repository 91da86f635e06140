package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// UpsertChain inserts or replaces the chain record.
func UpsertChain(c *chain.Chain) func(*badger.Txn) error {
	return upsert(makePrefix(codeChain, c.ID), c)
}

// RetrieveChain retrieves the chain record.
// Error returns:
//   - storage.ErrNotFound if the chain was never stored
func RetrieveChain(chainID chain.ChainID, c *chain.Chain) func(*badger.Txn) error {
	return retrieve(makePrefix(codeChain, chainID), c)
}
