package protocol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

// TestAdvanceLIB_PrunesAlternateBranch builds a main chain of heights 1..10,
// executed up to 10, and a 5-block alternate branch of heights 5..9 forking
// off block 4. Advancing the LIB to 7 on the main chain must prune the whole
// alternate branch and keep every main chain block.
func TestAdvanceLIB_PrunesAlternateBranch(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 10)
		attachAll(t, st, main...)
		execute(t, st, all, main[9].ID())
		alternate := unittest.ChainFixture(main[3].Header, 5)
		attachAll(t, st, alternate...)
		require.Equal(t, uint64(9), alternate[4].Height())

		c := st.Chain()
		require.Equal(t, main[9].ID(), c.BestChainID)
		require.Equal(t, main[9].ID(), c.LongestChainID)
		require.Len(t, c.Branches, 2)

		var merged []chain.Identifier
		hook := func(irreversible []*chain.ChainBlockLink) func(*transaction.Tx) error {
			return func(*transaction.Tx) error {
				for _, link := range irreversible {
					merged = append(merged, link.BlockID)
				}
				return nil
			}
		}

		lib := main[6]
		result, err := st.AdvanceLIB(context.Background(), lib.ID(), lib.Height(), hook)
		require.NoError(t, err)

		alternateIDs := make([]chain.Identifier, 0, len(alternate))
		for _, block := range alternate {
			alternateIDs = append(alternateIDs, block.ID())
			requireBlockStored(t, all, block.ID(), false)
			_, err := st.Link(block.ID())
			assert.ErrorIs(t, err, storage.ErrNotFound)
		}
		assert.ElementsMatch(t, alternateIDs, result.Pruned)
		assert.Equal(t, []chain.Identifier{alternate[4].ID()}, result.RemovedBranches)

		for _, block := range main {
			requireBlockStored(t, all, block.ID(), true)
		}

		expectedIrreversible := make([]chain.Identifier, 0, 7)
		for _, block := range main[:7] {
			expectedIrreversible = append(expectedIrreversible, block.ID())
		}
		assert.Equal(t, expectedIrreversible, result.Irreversible)
		assert.Equal(t, expectedIrreversible, merged)

		c = st.Chain()
		assert.Equal(t, lib.ID(), c.LastIrreversibleBlockID)
		assert.Equal(t, uint64(7), c.LastIrreversibleBlockHeight)
		assert.Equal(t, []chain.Identifier{main[9].ID()}, tipIDs(c))
		assert.Equal(t, main[9].ID(), c.LongestChainID)
	})
}

// TestAdvanceLIB_RecomputesLongest prunes the branch that was the longest
// chain; the longest chain falls back to the best chain.
func TestAdvanceLIB_RecomputesLongest(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 3)
		attachAll(t, st, main...)
		execute(t, st, all, main[2].ID())
		fork := unittest.ChainFixture(main[0].Header, 4)
		attachAll(t, st, fork...)
		require.Equal(t, fork[3].ID(), st.Chain().LongestChainID)

		_, err := st.AdvanceLIB(context.Background(), main[1].ID(), 2, nil)
		require.NoError(t, err)

		c := st.Chain()
		assert.Equal(t, main[2].ID(), c.LongestChainID)
		assert.Equal(t, uint64(3), c.LongestChainHeight)
		for _, block := range fork {
			requireBlockStored(t, all, block.ID(), false)
		}
	})
}

func TestAdvanceLIB_NoOp(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 4)
		attachAll(t, st, main...)
		execute(t, st, all, main[2].ID())
		fork := unittest.ChainFixture(genesis.Header, 2)
		attachAll(t, st, fork...)
		execute(t, st, all, fork[1].ID())

		_, err := st.AdvanceLIB(context.Background(), main[1].ID(), 2, nil)
		require.NoError(t, err)
		before := st.Chain()

		cases := map[string]struct {
			blockID chain.Identifier
			height  uint64
		}{
			"same height":          {blockID: main[1].ID(), height: 2},
			"lower height":         {blockID: main[0].ID(), height: 1},
			"above best chain":     {blockID: main[3].ID(), height: 4},
			"not on the best path": {blockID: unittest.IdentifierFixture(), height: 3},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				result, err := st.AdvanceLIB(context.Background(), tc.blockID, tc.height, nil)
				require.NoError(t, err)
				assert.True(t, result.IsEmpty())
				assert.Same(t, before, st.Chain())
			})
		}
	})
}

// TestAdvanceLIB_PrunesNotLinked verifies that waiting blocks that can only
// connect below the new LIB are dropped, while others are kept.
func TestAdvanceLIB_PrunesNotLinked(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 5)
		attachAll(t, st, main[:3]...)
		execute(t, st, all, main[2].ID())

		// a two-block orphan chain whose missing parent would sit at height 1
		lostParent := unittest.BlockWithParentFixture(genesis.Header)
		lost := unittest.ChainFixture(lostParent.Header, 2)
		// the direct child of the missing main block 4
		waiting := main[4]
		attachAll(t, st, lost...)
		attachAll(t, st, waiting)
		require.Len(t, st.Chain().NotLinkedBlocks, 3)

		result, err := st.AdvanceLIB(context.Background(), main[1].ID(), 2, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []chain.Identifier{lost[0].ID(), lost[1].ID()}, result.NotLinked)
		for _, block := range lost {
			requireBlockStored(t, all, block.ID(), false)
		}

		c := st.Chain()
		require.Len(t, c.NotLinkedBlocks, 1)
		assert.Equal(t, waiting.ID(), c.NotLinkedBlocks[0].BlockID)

		// the missing block arrives and the waiting block is linked
		status := attachAll(t, st, main[3])
		assert.True(t, status.Has(chain.AttachStatusLongestChainFound))
		assert.Equal(t, waiting.ID(), st.Chain().LongestChainID)
	})
}

// TestAdvanceLIB_SweepsTombstones verifies that failed tombstones at or below
// the new LIB are removed.
func TestAdvanceLIB_SweepsTombstones(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 3)
		attachAll(t, st, main...)
		execute(t, st, all, main[2].ID())

		bad := unittest.BlockWithParentFixture(main[0].Header)
		attachAll(t, st, bad)
		require.NoError(t, st.MarkFailed(context.Background(), bad.ID()))
		_, err := st.Discard(context.Background(), bad.ID(), bad.ID())
		require.NoError(t, err)

		result, err := st.AdvanceLIB(context.Background(), main[1].ID(), 2, nil)
		require.NoError(t, err)
		assert.Equal(t, []chain.Identifier{bad.ID()}, result.Pruned)
		_, err = st.Link(bad.ID())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
