package badger_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/storage"
	badgerstorage "github.com/AElfProject/AElf-sub008/storage/badger"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

func TestBlockStoreAndRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := badgerstorage.NewBlocks(metrics.NewNoopCollector(), db)
		block := unittest.BlockFixture()
		block.TransactionIDs = unittest.IdentifierListFixture(3)

		err := blocks.Store(block)
		require.NoError(t, err)

		// storing the same block again is a no-op
		err = blocks.Store(block)
		require.NoError(t, err)

		retrieved, err := blocks.ByID(block.ID())
		require.NoError(t, err)
		assert.Equal(t, block.ID(), retrieved.ID())
		assert.Equal(t, block.TransactionIDs, retrieved.TransactionIDs)

		// verify after a restart, the block stored in the database is the same
		// as the original
		fresh := badgerstorage.NewBlocks(metrics.NewNoopCollector(), db)
		retrieved, err = fresh.ByID(block.ID())
		require.NoError(t, err)
		assert.Equal(t, block.ID(), retrieved.ID())
	})
}

func TestBlockRemoveEvictsCache(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := badgerstorage.NewBlocks(metrics.NewNoopCollector(), db)
		block := unittest.BlockFixture()
		require.NoError(t, blocks.Store(block))

		exists, err := blocks.Exists(block.ID())
		require.NoError(t, err)
		require.True(t, exists)

		err = transaction.Update(db, blocks.RemoveTx(block.ID()))
		require.NoError(t, err)

		_, err = blocks.ByID(block.ID())
		assert.ErrorIs(t, err, storage.ErrNotFound)
		exists, err = blocks.Exists(block.ID())
		require.NoError(t, err)
		assert.False(t, exists)

		// removing an unknown block is a no-op
		err = transaction.Update(db, blocks.RemoveTx(block.ID()))
		assert.NoError(t, err)
	})
}

func TestBlockStoreTx_RolledBackTransactionIsNotCached(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := badgerstorage.NewBlocks(metrics.NewNoopCollector(), db)
		block := unittest.BlockFixture()

		rollback := errors.New("rollback")
		err := transaction.Update(db, func(tx *transaction.Tx) error {
			err := blocks.StoreTx(block)(tx)
			require.NoError(t, err)
			return rollback
		})
		require.ErrorIs(t, err, rollback)

		_, err = blocks.ByID(block.ID())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestTransactionsByIDs(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		txs := badgerstorage.NewTransactions(metrics.NewNoopCollector(), db)

		expected := make(chain.Transactions, 0, 20)
		for i := 0; i < 20; i++ {
			tx := unittest.TransactionFixture()
			require.NoError(t, txs.Store(tx))
			expected = append(expected, tx)
		}

		actual, err := txs.ByIDs(expected.IDs())
		require.NoError(t, err)
		assert.Equal(t, expected.IDs(), actual.IDs())

		_, err = txs.ByIDs([]chain.Identifier{expected[0].ID(), unittest.IdentifierFixture()})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
