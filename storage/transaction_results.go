package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// TransactionResults represents persistent storage for transaction results.
type TransactionResults interface {

	// StoreTx inserts the ordered results of the transactions executed in a
	// block.
	StoreTx(blockID chain.Identifier, results []*chain.TransactionResult) func(*transaction.Tx) error

	// ByBlockIDTransactionID returns the transaction result for the given block ID and transaction ID.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no result is stored
	ByBlockIDTransactionID(blockID chain.Identifier, txID chain.Identifier) (*chain.TransactionResult, error)

	// ByBlockID gets all transaction results for a block, ordered by transaction index.
	ByBlockID(blockID chain.Identifier) ([]*chain.TransactionResult, error)

	// RemoveByBlockIDTx deletes all results of a block.
	RemoveByBlockIDTx(blockID chain.Identifier) func(*transaction.Tx) error
}
