package ingestion_test

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/ingestion"
	"github.com/AElfProject/AElf-sub008/engine/execution/state"
	"github.com/AElfProject/AElf-sub008/engine/execution/testutil"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/module/validation"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	badgerstorage "github.com/AElfProject/AElf-sub008/storage/badger"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
	"github.com/AElfProject/AElf-sub008/utils/unittest/mocks"
)

type harness struct {
	t         *testing.T
	db        *badger.DB
	all       *storage.All
	st        *protocol.State
	es        *state.ExecutionState
	genesis   *chain.Block
	builder   *testutil.ChainBuilder
	consumer  *mocks.Consumer
	validator *mocks.ValidationProvider
	core      *ingestion.Core
}

func runWithCore(t *testing.T, cfg ingestion.Config, f func(h *harness)) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		all := badgerstorage.InitAll(metrics.NewNoopCollector(), db)
		es := state.NewExecutionState(unittest.Logger(), db, all.StateSets, all.WorldState, all.TransactionResults)
		consumer := mocks.NewConsumer()
		service := computer.NewSequentialExecutingService(mocks.NewKVExecutor(), metrics.NewNoopCollector())
		executor := computer.NewBlockExecutor(unittest.Logger(), metrics.NewNoopCollector(), trace.NewNoopTracer(), es, service, consumer)

		st, err := ingestion.Bootstrap(context.Background(), unittest.Logger(), db, metrics.NewNoopCollector(), trace.NewNoopTracer(),
			all, es, executor, chain.Genesis(unittest.TestChainID), nil)
		require.NoError(t, err)
		genesis, err := all.Blocks.ByID(st.Chain().GenesisBlockID)
		require.NoError(t, err)

		validator := &mocks.ValidationProvider{}
		registry := validation.NewRegistry(unittest.Logger(),
			validation.NewHeaderValidator(unittest.TestChainID, all.Blocks, validation.DefaultMaxFutureDrift),
			validation.NewBodyValidator(validation.DefaultMaxTransactions),
			validator,
		)

		h := &harness{
			t:         t,
			db:        db,
			all:       all,
			st:        st,
			es:        es,
			genesis:   genesis,
			builder:   testutil.NewChainBuilder(t, unittest.GenesisFixture(), all.Transactions),
			consumer:  consumer,
			validator: validator,
			core: ingestion.NewCore(unittest.Logger(), metrics.NewNoopCollector(), trace.NewNoopTracer(), cfg,
				st, es, all, executor, registry, consumer),
		}
		require.Equal(t, unittest.GenesisFixture().ID(), genesis.ID())
		f(h)
	})
}

func (h *harness) process(blocks ...*chain.Block) chain.AttachStatus {
	var status chain.AttachStatus
	for _, block := range blocks {
		s, err := h.core.ProcessBlock(context.Background(), block)
		require.NoError(h.t, err)
		status |= s
	}
	return status
}

func (h *harness) link(blockID chain.Identifier) *chain.ChainBlockLink {
	link, err := h.st.Link(blockID)
	require.NoError(h.t, err)
	return link
}

func (h *harness) value(blockID chain.Identifier, key string) []byte {
	view, err := h.es.NewBlockView(blockID)
	require.NoError(h.t, err)
	value, err := view.Get(key)
	require.NoError(h.t, err)
	return value
}

func (h *harness) stored(blockID chain.Identifier) bool {
	exists, err := h.all.Blocks.Exists(blockID)
	require.NoError(h.t, err)
	return exists
}

func counterTxs(i int) chain.Transactions {
	return chain.Transactions{
		mocks.IncrementTransaction("alice", "counter", uint64(i)),
		mocks.SetTransaction("bob", "height", []byte{byte(i + 1)}, uint64(i)),
	}
}

func forkTxs(i int) chain.Transactions {
	return chain.Transactions{
		mocks.SetTransaction("carol", "fork", []byte{byte(i + 1)}, uint64(i)),
	}
}
