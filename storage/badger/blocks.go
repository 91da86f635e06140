package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// Blocks implements a simple read-only block storage around a badger DB.
type Blocks struct {
	db    *badger.DB
	cache *Cache[chain.Identifier, *chain.Block]
}

var _ storage.Blocks = (*Blocks)(nil)

// NewBlocks creates a block store. Blocks are content-addressed, storing a
// known block again is a no-op.
func NewBlocks(collector module.CacheMetrics, db *badger.DB) *Blocks {

	store := func(blockID chain.Identifier, block *chain.Block) func(*transaction.Tx) error {
		return transaction.WithTx(operation.SkipDuplicates(operation.InsertBlock(blockID, block)))
	}

	retrieve := func(blockID chain.Identifier) func(*badger.Txn) (*chain.Block, error) {
		return func(tx *badger.Txn) (*chain.Block, error) {
			var block chain.Block
			err := operation.RetrieveBlock(blockID, &block)(tx)
			return &block, err
		}
	}

	b := &Blocks{
		db: db,
		cache: newCache[chain.Identifier, *chain.Block](collector, metrics.ResourceBlock,
			withLimit[chain.Identifier, *chain.Block](1000),
			withStore(store),
			withRetrieve(retrieve)),
	}

	return b
}

func (b *Blocks) StoreTx(block *chain.Block) func(*transaction.Tx) error {
	return b.cache.PutTx(block.ID(), block)
}

func (b *Blocks) Store(block *chain.Block) error {
	return operation.RetryOnConflictTx(b.db, transaction.Update, b.StoreTx(block))
}

func (b *Blocks) ByID(blockID chain.Identifier) (*chain.Block, error) {
	tx := b.db.NewTransaction(false)
	defer tx.Discard()
	return b.cache.Get(blockID)(tx)
}

func (b *Blocks) Exists(blockID chain.Identifier) (bool, error) {
	if b.cache.IsCached(blockID) {
		return true, nil
	}
	var exists bool
	err := b.db.View(operation.BlockExists(blockID, &exists))
	if err != nil {
		return false, fmt.Errorf("could not check block existence: %w", err)
	}
	return exists, nil
}

func (b *Blocks) RemoveTx(blockID chain.Identifier) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		err := operation.RemoveBlock(blockID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not remove block %v: %w", blockID, err)
		}
		return b.cache.RemoveTx(blockID)(tx)
	}
}
