package badger_test

import (
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

func TestWorldState_ApplyStateSets(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		sets := badgerstorage.NewBlockStateSets(metrics.NewNoopCollector(), db)
		world := badgerstorage.NewWorldState(db)

		first := chain.NewBlockStateSet()
		first.BlockID = unittest.IdentifierFixture()
		first.Height = 1
		first.Set("a", []byte("1"))
		first.Set("b", []byte("2"))

		second := chain.NewBlockStateSet()
		second.BlockID = unittest.IdentifierFixture()
		second.ParentID = first.BlockID
		second.Height = 2
		second.Set("a", []byte("3"))
		second.Delete("b")

		for _, set := range []*chain.BlockStateSet{first, second} {
			require.NoError(t, transaction.Update(db, sets.StoreTx(set)))
		}

		exists, err := sets.Exists(second.BlockID)
		require.NoError(t, err)
		require.True(t, exists)

		err = transaction.Update(db, func(tx *transaction.Tx) error {
			for _, set := range []*chain.BlockStateSet{first, second} {
				err := world.ApplyTx(set)(tx)
				if err != nil {
					return err
				}
				err = sets.RemoveTx(set.BlockID)(tx)
				if err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		value, err := world.Get("a")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), value)
		_, err = world.Get("b")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		mergedID, mergedHeight, err := world.MergedBlock()
		require.NoError(t, err)
		assert.Equal(t, second.BlockID, mergedID)
		assert.Equal(t, uint64(2), mergedHeight)

		exists, err = sets.Exists(second.BlockID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestBlockStateSets_RetrievedSetIsUsable(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		set := chain.NewBlockStateSet()
		set.BlockID = unittest.IdentifierFixture()
		require.NoError(t, transaction.Update(db, badgerstorage.NewBlockStateSets(metrics.NewNoopCollector(), db).StoreTx(set)))

		// a fresh store reads from the database
		retrieved, err := badgerstorage.NewBlockStateSets(metrics.NewNoopCollector(), db).ByBlockID(set.BlockID)
		require.NoError(t, err)
		assert.NotPanics(t, func() {
			retrieved.Set("k", []byte("v"))
			retrieved.Delete("x")
		})
	})
}
