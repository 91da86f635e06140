package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// InsertTransactionResult stores the result at its index within the block and
// indexes the index by transaction id.
func InsertTransactionResult(blockID chain.Identifier, txIndex uint32, result *chain.TransactionResult) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := insert(makePrefix(codeTransactionResult, blockID, txIndex), result)(tx)
		if err != nil {
			return err
		}
		return insert(makePrefix(codeIndexTransactionResultByTxID, blockID, result.TransactionID), txIndex)(tx)
	}
}

// RetrieveTransactionResult retrieves the result of a transaction executed in a
// block.
// Error returns:
//   - storage.ErrNotFound if there is no such result
func RetrieveTransactionResult(blockID chain.Identifier, txID chain.Identifier, result *chain.TransactionResult) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var txIndex uint32
		err := retrieve(makePrefix(codeIndexTransactionResultByTxID, blockID, txID), &txIndex)(tx)
		if err != nil {
			return err
		}
		return retrieve(makePrefix(codeTransactionResult, blockID, txIndex), result)(tx)
	}
}

// LookupTransactionResultsByBlockID retrieves all results of a block ordered by
// transaction index.
func LookupTransactionResultsByBlockID(blockID chain.Identifier, results *[]*chain.TransactionResult) func(*badger.Txn) error {
	*results = make([]*chain.TransactionResult, 0)
	iteration := func() (func() interface{}, func() error) {
		result := new(chain.TransactionResult)
		create := func() interface{} {
			return result
		}
		handle := func() error {
			*results = append(*results, result)
			return nil
		}
		return create, handle
	}
	return traverse(makePrefix(codeTransactionResult, blockID), iteration)
}

// RemoveTransactionResultsByBlockID removes all results of a block and their
// index entries.
func RemoveTransactionResultsByBlockID(blockID chain.Identifier) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := removeByPrefix(makePrefix(codeTransactionResult, blockID))(tx)
		if err != nil {
			return err
		}
		return removeByPrefix(makePrefix(codeIndexTransactionResultByTxID, blockID))(tx)
	}
}
