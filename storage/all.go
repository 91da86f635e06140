package storage

// All includes all the storage modules
type All struct {
	Blocks             Blocks
	Transactions       Transactions
	Links              ChainBlockLinks
	Chains             Chains
	StateSets          BlockStateSets
	WorldState         WorldState
	TransactionResults TransactionResults
}
