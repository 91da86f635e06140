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

// ChainBlockLinks implements the link storage with its children and height
// indexes around a badger DB. Cached links are never mutated; every status
// change caches a new value.
type ChainBlockLinks struct {
	db    *badger.DB
	cache *Cache[chain.Identifier, *chain.ChainBlockLink]
}

var _ storage.ChainBlockLinks = (*ChainBlockLinks)(nil)

func NewChainBlockLinks(collector module.CacheMetrics, db *badger.DB) *ChainBlockLinks {
	store := func(blockID chain.Identifier, link *chain.ChainBlockLink) func(*transaction.Tx) error {
		return transaction.WithTx(func(tx *badger.Txn) error {
			err := operation.InsertChainBlockLink(link)(tx)
			if err != nil {
				return fmt.Errorf("could not insert link: %w", err)
			}
			err = operation.IndexChild(link.ParentID, blockID)(tx)
			if err != nil {
				return fmt.Errorf("could not index child: %w", err)
			}
			err = operation.IndexHeight(link.Height, blockID)(tx)
			if err != nil {
				return fmt.Errorf("could not index height: %w", err)
			}
			return nil
		})
	}

	retrieve := func(blockID chain.Identifier) func(*badger.Txn) (*chain.ChainBlockLink, error) {
		return func(tx *badger.Txn) (*chain.ChainBlockLink, error) {
			var link chain.ChainBlockLink
			err := operation.RetrieveChainBlockLink(blockID, &link)(tx)
			return &link, err
		}
	}

	return &ChainBlockLinks{
		db: db,
		cache: newCache[chain.Identifier, *chain.ChainBlockLink](collector, metrics.ResourceChainBlockLink,
			withLimit[chain.Identifier, *chain.ChainBlockLink](10_000),
			withStore(store),
			withRetrieve(retrieve)),
	}
}

func (l *ChainBlockLinks) ByBlockID(blockID chain.Identifier) (*chain.ChainBlockLink, error) {
	tx := l.db.NewTransaction(false)
	defer tx.Discard()
	return l.cache.Get(blockID)(tx)
}

func (l *ChainBlockLinks) StoreTx(link *chain.ChainBlockLink) func(*transaction.Tx) error {
	return l.cache.PutTx(link.BlockID, link)
}

func (l *ChainBlockLinks) SetExecutionStatusTx(blockID chain.Identifier, status chain.ExecutionStatus) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		var link chain.ChainBlockLink
		err := operation.RetrieveChainBlockLink(blockID, &link)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve link: %w", err)
		}
		if !link.ExecutionStatus.CanTransitionTo(status) {
			return fmt.Errorf("link %v cannot move from %s to %s: %w", blockID, link.ExecutionStatus, status, storage.ErrInvalidStatusTransition)
		}

		link.ExecutionStatus = status
		err = operation.UpdateChainBlockLink(&link)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update link: %w", err)
		}

		tx.OnSucceed(func() {
			l.cache.Insert(blockID, &link)
		})
		return nil
	}
}

func (l *ChainBlockLinks) RemoveTx(link *chain.ChainBlockLink) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		err := operation.RemoveChainBlockLink(link.BlockID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not remove link: %w", err)
		}
		err = operation.RemoveChildIndex(link.ParentID, link.BlockID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not remove child index: %w", err)
		}
		err = operation.RemoveHeightIndex(link.Height, link.BlockID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not remove height index: %w", err)
		}
		return l.cache.RemoveTx(link.BlockID)(tx)
	}
}

func (l *ChainBlockLinks) ChildrenOf(parentID chain.Identifier) ([]chain.Identifier, error) {
	var children []chain.Identifier
	err := l.db.View(operation.LookupChildren(parentID, &children))
	if err != nil {
		return nil, fmt.Errorf("could not look up children: %w", err)
	}
	return children, nil
}

func (l *ChainBlockLinks) AtHeight(height uint64) ([]chain.Identifier, error) {
	var blockIDs []chain.Identifier
	err := l.db.View(operation.LookupBlocksAtHeight(height, &blockIDs))
	if err != nil {
		return nil, fmt.Errorf("could not look up height index: %w", err)
	}
	return blockIDs, nil
}
