package storage

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Transactions represents persistent storage for transactions. Transactions are
// shared between forks and therefore never pruned together with a block.
type Transactions interface {

	// Store inserts the transaction, keyed by its id. Storing a known
	// transaction is a no-op.
	Store(tx *chain.Transaction) error

	// ByID returns the transaction for the given id.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no transaction with the given id is stored
	ByID(txID chain.Identifier) (*chain.Transaction, error)

	// ByIDs returns the transactions in the order of the given ids.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if any of the transactions is unknown
	ByIDs(txIDs []chain.Identifier) (chain.Transactions, error)
}
