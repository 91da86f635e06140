package protocol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

func TestAttachBlock_ExtendsBestChain(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		block := unittest.BlockWithParentFixture(genesis.Header)

		status, err := st.AttachBlock(context.Background(), block)
		require.NoError(t, err)
		assert.True(t, status.Has(chain.AttachStatusNewBlockLinked))
		assert.True(t, status.Has(chain.AttachStatusBestChainFound))
		assert.True(t, status.Has(chain.AttachStatusLongestChainFound))
		assert.False(t, status.Has(chain.AttachStatusNotLinked))

		c := st.Chain()
		assert.Equal(t, block.ID(), c.LongestChainID)
		assert.Equal(t, uint64(1), c.LongestChainHeight)
		assert.Equal(t, genesis.ID(), c.BestChainID)
		assert.Equal(t, []chain.Identifier{block.ID()}, tipIDs(c))

		link, err := st.Link(block.ID())
		require.NoError(t, err)
		assert.Equal(t, chain.ExecutionStatusNone, link.ExecutionStatus)
		requireBlockStored(t, all, block.ID(), true)
	})
}

// TestAttachBlock_Idempotent verifies that attaching a known block changes
// neither the branches nor the heights.
func TestAttachBlock_Idempotent(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		blocks := unittest.ChainFixture(genesis.Header, 3)
		attachAll(t, st, blocks...)
		orphan := unittest.BlockWithParentFixture(unittest.BlockFixture().Header)
		attachAll(t, st, orphan)
		before := st.Chain()

		for _, block := range append(blocks, orphan) {
			status, err := st.AttachBlock(context.Background(), block)
			require.NoError(t, err)
			assert.Equal(t, chain.AttachStatusNone, status)
		}
		assert.Same(t, before, st.Chain())
	})
}

func TestAttachBlock_NotLinkedCascade(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		blocks := unittest.ChainFixture(genesis.Header, 4)

		// everything above the first block arrives first, in reverse order
		for i := len(blocks) - 1; i > 0; i-- {
			status, err := st.AttachBlock(context.Background(), blocks[i])
			require.NoError(t, err)
			assert.Equal(t, chain.AttachStatusNotLinked, status)
			requireBlockStored(t, all, blocks[i].ID(), true)
		}
		assert.Len(t, st.Chain().NotLinkedBlocks, 3)
		assert.Equal(t, genesis.ID(), st.Chain().LongestChainID)

		status, err := st.AttachBlock(context.Background(), blocks[0])
		require.NoError(t, err)
		assert.True(t, status.Has(chain.AttachStatusNewBlockLinked|chain.AttachStatusLongestChainFound))

		c := st.Chain()
		assert.Empty(t, c.NotLinkedBlocks)
		assert.Equal(t, blocks[3].ID(), c.LongestChainID)
		assert.Equal(t, uint64(4), c.LongestChainHeight)
		assert.Equal(t, []chain.Identifier{blocks[3].ID()}, tipIDs(c))
		for _, block := range blocks {
			_, err := st.Link(block.ID())
			assert.NoError(t, err)
		}
	})
}

// TestAttachBlock_DeepOrphanChain links a long chain of orphans that arrives
// in reverse order.
func TestAttachBlock_DeepOrphanChain(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		blocks := unittest.ChainFixture(genesis.Header, 300)
		for i := len(blocks) - 1; i > 0; i-- {
			attachAll(t, st, blocks[i])
		}
		attachAll(t, st, blocks[0])

		c := st.Chain()
		assert.Empty(t, c.NotLinkedBlocks)
		assert.Equal(t, uint64(300), c.LongestChainHeight)
		assert.Len(t, c.Branches, 1)
	})
}

// TestAttachBlock_TieKeepsFirstSeen verifies that a fork reaching the same
// height does not take over the longest chain.
func TestAttachBlock_TieKeepsFirstSeen(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 3)
		fork := unittest.ChainFixture(genesis.Header, 3)
		attachAll(t, st, main...)

		status := attachAll(t, st, fork...)
		assert.False(t, status.Has(chain.AttachStatusLongestChainFound))

		c := st.Chain()
		assert.Equal(t, main[2].ID(), c.LongestChainID)
		assert.ElementsMatch(t, []chain.Identifier{main[2].ID(), fork[2].ID()}, tipIDs(c))

		// one more block makes the fork the longest chain
		extension := unittest.BlockWithParentFixture(fork[2].Header)
		status = attachAll(t, st, extension)
		assert.True(t, status.Has(chain.AttachStatusLongestChainFound))
		assert.False(t, status.Has(chain.AttachStatusBestChainFound))
		assert.Equal(t, extension.ID(), st.Chain().LongestChainID)
	})
}

func TestAttachBlock_Invalid(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		t.Run("height does not follow parent", func(t *testing.T) {
			block := unittest.BlockWithParentFixture(genesis.Header, func(h *chain.Header) {
				h.Height = 5
			})
			_, err := st.AttachBlock(context.Background(), block)
			assert.True(t, state.IsInvalidExtensionError(err))
			requireBlockStored(t, all, block.ID(), false)
		})

		t.Run("other chain", func(t *testing.T) {
			block := unittest.BlockWithParentFixture(genesis.Header, func(h *chain.Header) {
				h.ChainID = "other"
			})
			_, err := st.AttachBlock(context.Background(), block)
			assert.True(t, state.IsInvalidExtensionError(err))
		})

		t.Run("not-linked block with inconsistent height is dropped", func(t *testing.T) {
			parent := unittest.BlockWithParentFixture(genesis.Header)
			child := unittest.BlockWithParentFixture(parent.Header, func(h *chain.Header) {
				h.Height = 7
			})
			assert.Equal(t, chain.AttachStatusNotLinked, attachAll(t, st, child))
			attachAll(t, st, parent)

			_, err := st.Link(child.ID())
			assert.ErrorIs(t, err, storage.ErrNotFound)
			requireBlockStored(t, all, child.ID(), false)
			_, waiting := st.Chain().NotLinked(child.ID())
			assert.False(t, waiting)
		})
	})
}

func TestAttachBlock_BelowLIBIsIgnored(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		main := unittest.ChainFixture(genesis.Header, 3)
		attachAll(t, st, main...)
		execute(t, st, all, main[2].ID())
		_, err := st.AdvanceLIB(context.Background(), main[1].ID(), 2, nil)
		require.NoError(t, err)

		late := unittest.BlockWithParentFixture(main[0].Header)
		status, err := st.AttachBlock(context.Background(), late)
		require.NoError(t, err)
		assert.Equal(t, chain.AttachStatusNone, status)
		requireBlockStored(t, all, late.ID(), false)
	})
}

// TestAttachBlock_DescendantOfFailedBlock verifies that children of a failed
// block become failed tombstones and never join the branches.
func TestAttachBlock_DescendantOfFailedBlock(t *testing.T) {
	runWithState(t, func(st *protocol.State, all *storage.All, genesis *chain.Block) {
		blocks := unittest.ChainFixture(genesis.Header, 2)
		attachAll(t, st, blocks[0])
		require.NoError(t, st.MarkFailed(context.Background(), blocks[0].ID()))
		_, err := st.Discard(context.Background(), blocks[0].ID(), blocks[0].ID())
		require.NoError(t, err)
		assert.Equal(t, []chain.Identifier{genesis.ID()}, tipIDs(st.Chain()))

		// the failed block itself is known
		status := attachAll(t, st, blocks[0])
		assert.Equal(t, chain.AttachStatusNone, status)

		status = attachAll(t, st, blocks[1])
		assert.Equal(t, chain.AttachStatusNewBlockLinked, status)
		link, err := st.Link(blocks[1].ID())
		require.NoError(t, err)
		assert.True(t, link.IsFailed())
		requireBlockStored(t, all, blocks[1].ID(), false)

		c := st.Chain()
		assert.Equal(t, genesis.ID(), c.LongestChainID)
		assert.Equal(t, []chain.Identifier{genesis.ID()}, tipIDs(c))
	})
}
