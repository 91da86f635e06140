package transaction_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

func TestUpdate_CallbacksAfterCommit(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var calls []int
		err := transaction.Update(db, func(tx *transaction.Tx) error {
			tx.OnSucceed(func() { calls = append(calls, 1) })
			tx.OnSucceed(func() { calls = append(calls, 2) })
			assert.Empty(t, calls)
			return tx.DBTxn.Set([]byte("key"), []byte("value"))
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, calls)

		err = db.View(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte("key"))
			return err
		})
		require.NoError(t, err)
	})
}

func TestUpdate_FailureDiscards(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		sentinel := errors.New("sentinel")
		err := transaction.Update(db, transaction.WithTx(func(txn *badger.Txn) error {
			err := txn.Set([]byte("key"), []byte("value"))
			if err != nil {
				return err
			}
			return sentinel
		}))
		require.ErrorIs(t, err, sentinel)

		err = db.View(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte("key"))
			return err
		})
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}
