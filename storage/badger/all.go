package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/storage"
)

func InitAll(metrics module.CacheMetrics, db *badger.DB) *storage.All {
	return &storage.All{
		Blocks:             NewBlocks(metrics, db),
		Transactions:       NewTransactions(metrics, db),
		Links:              NewChainBlockLinks(metrics, db),
		Chains:             NewChains(db),
		StateSets:          NewBlockStateSets(metrics, db),
		WorldState:         NewWorldState(db),
		TransactionResults: NewTransactionResults(db),
	}
}
