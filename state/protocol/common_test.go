package protocol_test

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	badgerstorage "github.com/AElfProject/AElf-sub008/storage/badger"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

// bootstrapState bootstraps a chain state on the database with a fresh
// genesis block.
func bootstrapState(t testing.TB, db *badger.DB) (*protocol.State, *storage.All, *chain.Block) {
	all := badgerstorage.InitAll(metrics.NewNoopCollector(), db)
	genesis := unittest.GenesisFixture()
	st, err := protocol.Bootstrap(unittest.Logger(), db, metrics.NewNoopCollector(), trace.NewNoopTracer(), all, genesis)
	require.NoError(t, err)
	return st, all, genesis
}

func runWithState(t *testing.T, f func(st *protocol.State, all *storage.All, genesis *chain.Block)) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		st, all, genesis := bootstrapState(t, db)
		f(st, all, genesis)
	})
}

// attachAll attaches the blocks in order and returns the combined status.
func attachAll(t testing.TB, st *protocol.State, blocks ...*chain.Block) chain.AttachStatus {
	var status chain.AttachStatus
	for _, block := range blocks {
		s, err := st.AttachBlock(context.Background(), block)
		require.NoError(t, err)
		status |= s
	}
	return status
}

// execute marks the not executed path up to the tip as executed.
func execute(t testing.TB, st *protocol.State, all *storage.All, tipID chain.Identifier) {
	links, err := st.NotExecutedLinks(tipID)
	require.NoError(t, err)
	blocks := make([]*chain.Block, 0, len(links))
	for _, link := range links {
		block, err := all.Blocks.ByID(link.BlockID)
		require.NoError(t, err)
		blocks = append(blocks, block)
	}
	_, err = st.MarkExecuted(context.Background(), blocks)
	require.NoError(t, err)
}

func requireBlockStored(t testing.TB, all *storage.All, blockID chain.Identifier, stored bool) {
	exists, err := all.Blocks.Exists(blockID)
	require.NoError(t, err)
	require.Equal(t, stored, exists, "block %v stored", blockID)
}

func tipIDs(c *chain.Chain) []chain.Identifier {
	ids := make([]chain.Identifier, 0, len(c.Branches))
	for _, b := range c.Branches {
		ids = append(ids, b.TipID)
	}
	return ids
}
