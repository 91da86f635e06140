package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// InsertTransaction inserts a transaction keyed by its id.
// Error returns:
//   - storage.ErrAlreadyExists if the transaction is already stored
func InsertTransaction(txID chain.Identifier, tx *chain.Transaction) func(*badger.Txn) error {
	return insert(makePrefix(codeTransaction, txID), tx)
}

// RetrieveTransaction retrieves a transaction by its id.
// Error returns:
//   - storage.ErrNotFound if the transaction is unknown
func RetrieveTransaction(txID chain.Identifier, tx *chain.Transaction) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTransaction, txID), tx)
}
