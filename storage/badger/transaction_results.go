package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// TransactionResults stores the results of executed transactions per block.
type TransactionResults struct {
	db *badger.DB
}

var _ storage.TransactionResults = (*TransactionResults)(nil)

func NewTransactionResults(db *badger.DB) *TransactionResults {
	return &TransactionResults{db: db}
}

func (tr *TransactionResults) StoreTx(blockID chain.Identifier, results []*chain.TransactionResult) func(*transaction.Tx) error {
	return transaction.WithTx(func(tx *badger.Txn) error {
		for i, result := range results {
			err := operation.InsertTransactionResult(blockID, uint32(i), result)(tx)
			if err != nil {
				return fmt.Errorf("could not insert transaction result %d: %w", i, err)
			}
		}
		return nil
	})
}

func (tr *TransactionResults) ByBlockIDTransactionID(blockID chain.Identifier, txID chain.Identifier) (*chain.TransactionResult, error) {
	var result chain.TransactionResult
	err := tr.db.View(operation.RetrieveTransactionResult(blockID, txID, &result))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (tr *TransactionResults) ByBlockID(blockID chain.Identifier) ([]*chain.TransactionResult, error) {
	var results []*chain.TransactionResult
	err := tr.db.View(operation.LookupTransactionResultsByBlockID(blockID, &results))
	if err != nil {
		return nil, fmt.Errorf("could not look up transaction results: %w", err)
	}
	return results, nil
}

func (tr *TransactionResults) RemoveByBlockIDTx(blockID chain.Identifier) func(*transaction.Tx) error {
	return transaction.WithTx(operation.RemoveTransactionResultsByBlockID(blockID))
}
