package chain

import (
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionStatus is the outcome of executing one transaction.
type TransactionStatus uint8

const (
	// TransactionStatusMined means the transaction executed and its state changes apply.
	TransactionStatusMined TransactionStatus = iota + 1
	// TransactionStatusFailed is a business-logic failure. The transaction is
	// still included in the block, its state changes are discarded.
	TransactionStatusFailed
	// TransactionStatusUnexecutable means the transaction was not reached before
	// the deadline. It is excluded from the block.
	TransactionStatusUnexecutable
)

// String returns the string representation of a transaction status.
func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusMined:
		return "mined"
	case TransactionStatusFailed:
		return "failed"
	case TransactionStatusUnexecutable:
		return "unexecutable"
	default:
		return "unknown"
	}
}

// LogEvent is an event emitted by a transaction.
type LogEvent struct {
	Address    string
	Name       string
	Indexed    [][]byte
	NonIndexed []byte
}

// Bloom returns the bloom filter of the event: its address, name and indexed
// fields.
func (e LogEvent) Bloom() types.Bloom {
	var bloom types.Bloom
	bloom.Add([]byte(e.Address))
	bloom.Add([]byte(e.Name))
	for _, indexed := range e.Indexed {
		bloom.Add(indexed)
	}
	return bloom
}

// ExecutionReturnSet is the per-transaction execution outcome.
type ExecutionReturnSet struct {
	TransactionID Identifier
	Status        TransactionStatus
	ReturnValue   []byte
	Error         string
	StateChanges  map[string][]byte
	StateDeletes  map[string]bool
	Logs          []LogEvent
	Bloom         types.Bloom
}

// NewUnexecutableReturnSet creates the return set of a transaction that was not
// reached.
func NewUnexecutableReturnSet(txID Identifier) *ExecutionReturnSet {
	return &ExecutionReturnSet{
		TransactionID: txID,
		Status:        TransactionStatusUnexecutable,
	}
}

// Executed returns true if the transaction ran, successfully or not.
func (r *ExecutionReturnSet) Executed() bool {
	return r.Status == TransactionStatusMined || r.Status == TransactionStatusFailed
}

// StatusLeaf is the leaf committed to by Header.StatusRoot.
func (r *ExecutionReturnSet) StatusLeaf() Identifier {
	return HashToID(r.TransactionID[:], []byte{byte(r.Status)})
}

// ReturnSets is an ordered collection of return sets.
type ReturnSets []*ExecutionReturnSet

// Executed returns the return sets of the transactions that actually ran, in order.
func (rs ReturnSets) Executed() ReturnSets {
	executed := make(ReturnSets, 0, len(rs))
	for _, r := range rs {
		if r.Executed() {
			executed = append(executed, r)
		}
	}
	return executed
}

// Unexecutable returns the ids of the transactions that were not reached.
func (rs ReturnSets) Unexecutable() []Identifier {
	var ids []Identifier
	for _, r := range rs {
		if r.Status == TransactionStatusUnexecutable {
			ids = append(ids, r.TransactionID)
		}
	}
	return ids
}

// TransactionIDs returns the transaction ids, in order.
func (rs ReturnSets) TransactionIDs() []Identifier {
	ids := make([]Identifier, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.TransactionID)
	}
	return ids
}

// Bloom returns the OR-combination of all blooms.
func (rs ReturnSets) Bloom() types.Bloom {
	var bloom types.Bloom
	for _, r := range rs {
		bloom = MergeBlooms(bloom, r.Bloom)
	}
	return bloom
}

// ByID returns the return set of the given transaction.
func (rs ReturnSets) ByID(txID Identifier) (*ExecutionReturnSet, bool) {
	for _, r := range rs {
		if r.TransactionID == txID {
			return r, true
		}
	}
	return nil, false
}

// TransactionResult is the persisted form of a return set, kept for consumers
// of executed blocks.
type TransactionResult struct {
	TransactionID Identifier
	BlockID       Identifier
	BlockHeight   uint64
	Status        TransactionStatus
	ReturnValue   []byte
	Error         string
	Logs          []LogEvent
	Bloom         types.Bloom
}

// NewTransactionResult converts a return set executed in the given block.
func NewTransactionResult(r *ExecutionReturnSet, blockID Identifier, height uint64) *TransactionResult {
	return &TransactionResult{
		TransactionID: r.TransactionID,
		BlockID:       blockID,
		BlockHeight:   height,
		Status:        r.Status,
		ReturnValue:   r.ReturnValue,
		Error:         r.Error,
		Logs:          r.Logs,
		Bloom:         r.Bloom,
	}
}
