package chain

import (
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

// ChainID names one logical chain. Each chain has exactly one Chain record.
type ChainID string

// Header contains all meta-data of a block. The execution related fields
// (TransactionRoot, StatusRoot, StateRoot and Bloom) are produced by the block
// executor; every other field is set by the block producer.
type Header struct {
	ChainID   ChainID
	ParentID  Identifier
	Height    uint64
	Timestamp time.Time

	// TransactionRoot is the merkle root over the executed transaction ids.
	TransactionRoot Identifier
	// StatusRoot is the merkle root over hash(txID || status) leaves.
	StatusRoot Identifier
	// StateRoot commits to the sorted state changes and deletes of the block.
	StateRoot Identifier
	// Bloom aggregates the log blooms of all executed transactions.
	Bloom types.Bloom

	// ConsensusData is opaque to this package, it carries the information the
	// consensus layer needs to validate the block.
	ConsensusData []byte
}

// headerBody is the canonical encoding of a header used for hashing. The
// timestamp is reduced to nanoseconds so that the identity does not depend on
// the time zone of the decoded value.
type headerBody struct {
	ChainID         ChainID
	ParentID        Identifier
	Height          uint64
	Timestamp       int64
	TransactionRoot Identifier
	StatusRoot      Identifier
	StateRoot       Identifier
	Bloom           []byte
	ConsensusData   []byte
}

// Body returns the canonical, hashable representation of the header.
func (h Header) Body() interface{} {
	return headerBody{
		ChainID:         h.ChainID,
		ParentID:        h.ParentID,
		Height:          h.Height,
		Timestamp:       h.Timestamp.UnixNano(),
		TransactionRoot: h.TransactionRoot,
		StatusRoot:      h.StatusRoot,
		StateRoot:       h.StateRoot,
		Bloom:           h.Bloom.Bytes(),
		ConsensusData:   h.ConsensusData,
	}
}

// ID returns a unique ID to singularly identify the header and its block.
func (h Header) ID() Identifier {
	return MakeID(h.Body())
}

// Copy returns a deep copy of the header.
func (h *Header) Copy() *Header {
	cp := *h
	if h.ConsensusData != nil {
		cp.ConsensusData = make([]byte, len(h.ConsensusData))
		copy(cp.ConsensusData, h.ConsensusData)
	}
	return &cp
}
