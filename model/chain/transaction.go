package chain

// Transaction is the unit of execution. Its content is opaque to this module;
// the transaction executor interprets MethodName and Params against the state.
type Transaction struct {
	From           string
	To             string
	RefBlockHeight uint64
	MethodName     string
	Params         []byte
	Signature      []byte
}

// ID returns the canonical identifier of the transaction.
func (tx Transaction) ID() Identifier {
	return MakeID(tx)
}

// Transactions is an ordered list of transactions.
type Transactions []*Transaction

// IDs returns the ids of the transactions, in order.
func (txs Transactions) IDs() []Identifier {
	ids := make([]Identifier, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID())
	}
	return ids
}
