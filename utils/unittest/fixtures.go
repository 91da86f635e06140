package unittest

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"time"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// TestChainID is the chain id used by fixtures.
const TestChainID chain.ChainID = "test-chain"

func IdentifierFixture() chain.Identifier {
	var id chain.Identifier
	_, _ = crand.Read(id[:])
	return id
}

// IdentifierListFixture returns a list of random identifiers.
func IdentifierListFixture(n int) chain.IdentifierList {
	list := make([]chain.Identifier, n)
	for i := 0; i < n; i++ {
		list[i] = IdentifierFixture()
	}
	return list
}

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = crand.Read(b)
	return b
}

// GenesisFixture returns the genesis block of the test chain. Its execution
// fields are empty, which matches executing no transactions against an empty
// state.
func GenesisFixture() *chain.Block {
	return &chain.Block{Header: chain.Genesis(TestChainID)}
}

func HeaderFixture(opts ...func(*chain.Header)) *chain.Header {
	header := &chain.Header{
		ChainID:         TestChainID,
		ParentID:        IdentifierFixture(),
		Height:          rand.Uint64() % 1000,
		Timestamp:       time.Now().UTC(),
		TransactionRoot: chain.ZeroID,
		StatusRoot:      chain.ZeroID,
		StateRoot:       IdentifierFixture(),
	}
	for _, apply := range opts {
		apply(header)
	}
	return header
}

// HeaderWithParentFixture returns a header extending the parent. The state root
// is random so that siblings are distinct.
func HeaderWithParentFixture(parent *chain.Header, opts ...func(*chain.Header)) *chain.Header {
	return HeaderFixture(append([]func(*chain.Header){
		func(h *chain.Header) {
			h.ChainID = parent.ChainID
			h.ParentID = parent.ID()
			h.Height = parent.Height + 1
			h.Timestamp = parent.Timestamp.Add(time.Second)
		},
	}, opts...)...)
}

// WithConsensusData sets the consensus data of a header.
func WithConsensusData(data []byte) func(*chain.Header) {
	return func(h *chain.Header) {
		h.ConsensusData = data
	}
}

func BlockFixture(opts ...func(*chain.Header)) *chain.Block {
	return &chain.Block{Header: HeaderFixture(opts...)}
}

// BlockWithParentFixture returns a block without transactions extending the
// parent. The block is not the result of executing anything, it is meant for
// tests of the block graph.
func BlockWithParentFixture(parent *chain.Header, opts ...func(*chain.Header)) *chain.Block {
	return &chain.Block{Header: HeaderWithParentFixture(parent, opts...)}
}

// ChainFixture returns n blocks, each extending the previous one, starting on
// top of the parent.
func ChainFixture(parent *chain.Header, n int) []*chain.Block {
	blocks := make([]*chain.Block, 0, n)
	for i := 0; i < n; i++ {
		block := BlockWithParentFixture(parent)
		blocks = append(blocks, block)
		parent = block.Header
	}
	return blocks
}

func TransactionFixture(opts ...func(*chain.Transaction)) *chain.Transaction {
	tx := &chain.Transaction{
		From:           fmt.Sprintf("from-%x", RandomBytes(4)),
		To:             "contract",
		RefBlockHeight: 0,
		MethodName:     "noop",
		Params:         RandomBytes(8),
		Signature:      RandomBytes(16),
	}
	for _, apply := range opts {
		apply(tx)
	}
	return tx
}

func BlockStateSetFixture() *chain.BlockStateSet {
	set := chain.NewBlockStateSet()
	set.BlockID = IdentifierFixture()
	set.ParentID = IdentifierFixture()
	set.Height = rand.Uint64() % 1000
	set.Set("k1", []byte("v1"))
	set.Set("k2", []byte("v2"))
	set.Delete("k3")
	return set
}
