package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
	"github.com/AElfProject/AElf-sub008/utils/unittest/mocks"
)

// ChainBuilder builds blocks with valid execution results without touching
// the execution state of the node under test. It tracks the full state after
// every block it built in memory.
type ChainBuilder struct {
	t            testing.TB
	executor     computer.BlockExecutor
	transactions storage.Transactions
	states       map[chain.Identifier]map[string][]byte
}

// NewChainBuilder creates a builder on top of the given genesis block, whose
// state is empty. Transactions of built blocks are stored in transactions.
func NewChainBuilder(t testing.TB, genesis *chain.Block, transactions storage.Transactions) *ChainBuilder {
	b := &ChainBuilder{
		t:            t,
		transactions: transactions,
		states:       map[chain.Identifier]map[string][]byte{genesis.ID(): {}},
	}
	service := computer.NewSequentialExecutingService(mocks.NewKVExecutor(), metrics.NewNoopCollector())
	b.executor = computer.NewBlockExecutor(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		trace.NewNoopTracer(),
		builderViews{b},
		service,
		mocks.NewConsumer(),
	)
	return b
}

type builderViews struct {
	b *ChainBuilder
}

func (v builderViews) NewBlockView(blockID chain.Identifier) (*delta.View, error) {
	state, ok := v.b.states[blockID]
	if !ok {
		v.b.t.Fatalf("no state for parent %v", blockID)
	}
	return delta.NewView(func(key string) ([]byte, error) {
		return state[key], nil
	}), nil
}

// Build executes the transactions on top of parent and returns the resulting
// block. Sibling blocks are distinct through random consensus data.
func (b *ChainBuilder) Build(parent *chain.Block, txs ...*chain.Transaction) *chain.Block {
	return b.BuildExecuted(parent, txs...).Block
}

// BuildExecuted is Build returning the full execution result.
func (b *ChainBuilder) BuildExecuted(parent *chain.Block, txs ...*chain.Transaction) *computer.ExecutedBlock {
	header := unittest.HeaderWithParentFixture(parent.Header, unittest.WithConsensusData(unittest.RandomBytes(8)))
	executed, err := b.executor.ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(b.t, err)

	for _, tx := range txs {
		require.NoError(b.t, b.transactions.Store(tx))
	}

	state := make(map[string][]byte)
	for key, value := range b.states[parent.ID()] {
		state[key] = value
	}
	for key, value := range executed.StateSet.Changes {
		state[key] = value
	}
	for key := range executed.StateSet.Deletes {
		delete(state, key)
	}
	b.states[executed.Block.ID()] = state
	return executed
}

// Chain builds n blocks on top of parent. txs returns the transactions of the
// i-th block and may be nil.
func (b *ChainBuilder) Chain(parent *chain.Block, n int, txs func(i int) chain.Transactions) []*chain.Block {
	blocks := make([]*chain.Block, 0, n)
	for i := 0; i < n; i++ {
		var blockTxs chain.Transactions
		if txs != nil {
			blockTxs = txs(i)
		}
		block := b.Build(parent, blockTxs...)
		blocks = append(blocks, block)
		parent = block
	}
	return blocks
}

// State returns the full state after the given block.
func (b *ChainBuilder) State(blockID chain.Identifier) map[string][]byte {
	return b.states[blockID]
}
