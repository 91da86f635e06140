package chain

// Block is an immutable header plus the ordered list of the ids of the
// transactions it executed. Identity is the header hash, the transaction list is
// committed to through Header.TransactionRoot.
type Block struct {
	Header         *Header
	TransactionIDs []Identifier
}

// ID returns the ID of the header.
func (b Block) ID() Identifier {
	return b.Header.ID()
}

// Height returns the height of the block.
func (b Block) Height() uint64 {
	return b.Header.Height
}

// ParentID returns the id of the previous block.
func (b Block) ParentID() Identifier {
	return b.Header.ParentID
}

// Genesis creates the genesis header template for the given chain. The
// execution related fields are filled in when the genesis block is executed.
func Genesis(chainID ChainID) *Header {
	return &Header{
		ChainID:   chainID,
		ParentID:  ZeroID,
		Height:    0,
		Timestamp: GenesisTime,
	}
}
