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

// BlockStateSets stores the staged state sets of executed blocks.
type BlockStateSets struct {
	db    *badger.DB
	cache *Cache[chain.Identifier, *chain.BlockStateSet]
}

var _ storage.BlockStateSets = (*BlockStateSets)(nil)

func NewBlockStateSets(collector module.CacheMetrics, db *badger.DB) *BlockStateSets {
	store := func(blockID chain.Identifier, set *chain.BlockStateSet) func(*transaction.Tx) error {
		return transaction.WithTx(operation.SkipDuplicates(operation.InsertBlockStateSet(set)))
	}

	retrieve := func(blockID chain.Identifier) func(*badger.Txn) (*chain.BlockStateSet, error) {
		return func(tx *badger.Txn) (*chain.BlockStateSet, error) {
			set := chain.NewBlockStateSet()
			err := operation.RetrieveBlockStateSet(blockID, set)(tx)
			if set.Changes == nil {
				set.Changes = make(map[string][]byte)
			}
			if set.Deletes == nil {
				set.Deletes = make(map[string]bool)
			}
			return set, err
		}
	}

	return &BlockStateSets{
		db: db,
		cache: newCache[chain.Identifier, *chain.BlockStateSet](collector, metrics.ResourceBlockStateSet,
			withLimit[chain.Identifier, *chain.BlockStateSet](256),
			withStore(store),
			withRetrieve(retrieve)),
	}
}

func (s *BlockStateSets) StoreTx(set *chain.BlockStateSet) func(*transaction.Tx) error {
	return s.cache.PutTx(set.BlockID, set)
}

func (s *BlockStateSets) ByBlockID(blockID chain.Identifier) (*chain.BlockStateSet, error) {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()
	return s.cache.Get(blockID)(tx)
}

func (s *BlockStateSets) Exists(blockID chain.Identifier) (bool, error) {
	if s.cache.IsCached(blockID) {
		return true, nil
	}
	var exists bool
	err := s.db.View(operation.BlockStateSetExists(blockID, &exists))
	if err != nil {
		return false, fmt.Errorf("could not check state set existence: %w", err)
	}
	return exists, nil
}

func (s *BlockStateSets) RemoveTx(blockID chain.Identifier) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		err := operation.RemoveBlockStateSet(blockID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not remove state set: %w", err)
		}
		return s.cache.RemoveTx(blockID)(tx)
	}
}

// WorldState is the irreversible key-value state.
type WorldState struct {
	db *badger.DB
}

var _ storage.WorldState = (*WorldState)(nil)

func NewWorldState(db *badger.DB) *WorldState {
	return &WorldState{db: db}
}

func (w *WorldState) Get(key string) ([]byte, error) {
	var value []byte
	err := w.db.View(operation.RetrieveWorldStateValue(key, &value))
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (w *WorldState) ApplyTx(set *chain.BlockStateSet) func(*transaction.Tx) error {
	return transaction.WithTx(func(tx *badger.Txn) error {
		for _, key := range set.SortedChanges() {
			err := operation.UpsertWorldStateValue(key, set.Changes[key])(tx)
			if err != nil {
				return fmt.Errorf("could not set world state key %q: %w", key, err)
			}
		}
		for _, key := range set.SortedDeletes() {
			err := operation.RemoveWorldStateValue(key)(tx)
			if err != nil {
				return fmt.Errorf("could not delete world state key %q: %w", key, err)
			}
		}
		return operation.UpsertWorldStateMerged(set.BlockID, set.Height)(tx)
	})
}

func (w *WorldState) MergedBlock() (chain.Identifier, uint64, error) {
	var blockID chain.Identifier
	var height uint64
	err := w.db.View(operation.RetrieveWorldStateMerged(&blockID, &height))
	if err != nil {
		return chain.ZeroID, 0, err
	}
	return blockID, height, nil
}
