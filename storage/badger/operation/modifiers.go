package operation

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// SkipDuplicates turns storage.ErrAlreadyExists of the wrapped operation into
// success. Use it for content-addressed entities where storing the same value
// twice is harmless.
func SkipDuplicates(op func(*badger.Txn) error) func(tx *badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := op(tx)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil
		}
		return err
	}
}

// RetryOnConflict re-runs the operation as long as badger reports a conflict
// with a concurrent transaction.
func RetryOnConflict(action func(func(*badger.Txn) error) error, op func(tx *badger.Txn) error) error {
	for {
		err := action(op)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

// RetryOnConflictTx is RetryOnConflict for operations on transaction.Tx.
func RetryOnConflictTx(db *badger.DB, action func(*badger.DB, func(*transaction.Tx) error) error, op func(*transaction.Tx) error) error {
	for {
		err := action(db, op)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}
