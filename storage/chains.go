package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// Chains represents persistent storage for the chain record of each logical
// chain.
type Chains interface {

	// ByID returns the chain record.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the chain was not bootstrapped
	ByID(chainID chain.ChainID) (*chain.Chain, error)

	// StoreTx inserts or replaces the chain record.
	StoreTx(c *chain.Chain) func(*transaction.Tx) error
}
