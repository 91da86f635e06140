package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
)

// Chains stores the chain records. The chain state keeps the current record in
// memory, so there is no cache.
type Chains struct {
	db *badger.DB
}

var _ storage.Chains = (*Chains)(nil)

func NewChains(db *badger.DB) *Chains {
	return &Chains{db: db}
}

func (c *Chains) ByID(chainID chain.ChainID) (*chain.Chain, error) {
	var record chain.Chain
	err := c.db.View(operation.RetrieveChain(chainID, &record))
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Chains) StoreTx(record *chain.Chain) func(*transaction.Tx) error {
	return transaction.WithTx(operation.UpsertChain(record))
}
