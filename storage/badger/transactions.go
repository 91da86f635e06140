package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"golang.org/x/sync/errgroup"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// lookupConcurrency bounds the number of concurrent reads of ByIDs.
const lookupConcurrency = 8

// Transactions implements the transaction storage around a badger DB.
type Transactions struct {
	db    *badger.DB
	cache *Cache[chain.Identifier, *chain.Transaction]
}

var _ storage.Transactions = (*Transactions)(nil)

func NewTransactions(cacheMetrics module.CacheMetrics, db *badger.DB) *Transactions {
	store := func(txID chain.Identifier, tx *chain.Transaction) func(*transaction.Tx) error {
		return transaction.WithTx(operation.SkipDuplicates(operation.InsertTransaction(txID, tx)))
	}

	retrieve := func(txID chain.Identifier) func(*badger.Txn) (*chain.Transaction, error) {
		return func(tx *badger.Txn) (*chain.Transaction, error) {
			var body chain.Transaction
			err := operation.RetrieveTransaction(txID, &body)(tx)
			return &body, err
		}
	}

	t := &Transactions{
		db: db,
		cache: newCache[chain.Identifier, *chain.Transaction](cacheMetrics, metrics.ResourceTransaction,
			withLimit[chain.Identifier, *chain.Transaction](10_000),
			withStore(store),
			withRetrieve(retrieve)),
	}

	return t
}

func (t *Transactions) Store(tx *chain.Transaction) error {
	return operation.RetryOnConflictTx(t.db, transaction.Update, t.cache.PutTx(tx.ID(), tx))
}

func (t *Transactions) ByID(txID chain.Identifier) (*chain.Transaction, error) {
	tx := t.db.NewTransaction(false)
	defer tx.Discard()
	return t.cache.Get(txID)(tx)
}

func (t *Transactions) ByIDs(txIDs []chain.Identifier) (chain.Transactions, error) {
	txs := make(chain.Transactions, len(txIDs))

	var g errgroup.Group
	g.SetLimit(lookupConcurrency)
	for i, txID := range txIDs {
		i, txID := i, txID
		g.Go(func() error {
			tx, err := t.ByID(txID)
			if err != nil {
				return fmt.Errorf("could not retrieve transaction %v: %w", txID, err)
			}
			txs[i] = tx
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return txs, nil
}
