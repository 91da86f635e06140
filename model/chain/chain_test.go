package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

func TestChain_LongestBranch(t *testing.T) {
	a := chain.HashToID([]byte("a"))
	b := chain.HashToID([]byte("b"))
	c := chain.HashToID([]byte("c"))

	t.Run("no branches", func(t *testing.T) {
		_, ok := (&chain.Chain{}).LongestBranch()
		assert.False(t, ok)
	})

	t.Run("highest wins", func(t *testing.T) {
		c := &chain.Chain{Branches: []chain.Branch{
			{TipID: a, Height: 5, ReachedAt: 1},
			{TipID: b, Height: 7, ReachedAt: 2},
		}}
		longest, ok := c.LongestBranch()
		require.True(t, ok)
		assert.Equal(t, b, longest.TipID)
	})

	t.Run("tie prefers best chain tip", func(t *testing.T) {
		ch := &chain.Chain{BestChainID: c, Branches: []chain.Branch{
			{TipID: a, Height: 7, ReachedAt: 1},
			{TipID: c, Height: 7, ReachedAt: 3},
		}}
		longest, _ := ch.LongestBranch()
		assert.Equal(t, c, longest.TipID)
	})

	t.Run("tie prefers first reached", func(t *testing.T) {
		ch := &chain.Chain{Branches: []chain.Branch{
			{TipID: b, Height: 7, ReachedAt: 4},
			{TipID: a, Height: 7, ReachedAt: 2},
		}}
		longest, _ := ch.LongestBranch()
		assert.Equal(t, a, longest.TipID)
	})
}

func TestChain_Branches(t *testing.T) {
	a := chain.HashToID([]byte("a"))
	b := chain.HashToID([]byte("b"))

	ch := &chain.Chain{Sequence: 3}
	ch.AddBranch(a, 1)
	ch.AddBranch(a, 1)
	require.Len(t, ch.Branches, 1)

	ch.Sequence++
	ch.SetBranchTip(a, b, 2)
	require.Len(t, ch.Branches, 1)
	assert.False(t, ch.IsBranchTip(a))
	branch, ok := ch.Branch(b)
	require.True(t, ok)
	assert.Equal(t, uint64(4), branch.ReachedAt)

	// unknown old tip adds a branch
	ch.SetBranchTip(a, a, 2)
	assert.Len(t, ch.Branches, 2)

	cp := ch.Copy()
	assert.True(t, ch.RemoveBranch(a))
	assert.False(t, ch.RemoveBranch(a))
	assert.Len(t, cp.Branches, 2)
}

func TestChain_NotLinked(t *testing.T) {
	parent := chain.HashToID([]byte("parent"))
	x := chain.NotLinkedBlock{BlockID: chain.HashToID([]byte("x")), ParentID: parent, Height: 3}
	y := chain.NotLinkedBlock{BlockID: chain.HashToID([]byte("y")), ParentID: parent, Height: 3}

	ch := &chain.Chain{}
	ch.AddNotLinked(x)
	ch.AddNotLinked(x)
	ch.AddNotLinked(y)
	assert.Len(t, ch.NotLinkedBlocks, 2)
	assert.ElementsMatch(t, []chain.NotLinkedBlock{x, y}, ch.NotLinkedChildren(parent))

	assert.True(t, ch.RemoveNotLinked(x.BlockID))
	_, ok := ch.NotLinked(x.BlockID)
	assert.False(t, ok)
}

func TestAttachStatus(t *testing.T) {
	status := chain.AttachStatusNewBlockLinked | chain.AttachStatusLongestChainFound
	assert.True(t, status.Has(chain.AttachStatusNewBlockLinked))
	assert.False(t, status.Has(chain.AttachStatusBestChainFound))
	assert.False(t, status.Has(chain.AttachStatusNone))
	assert.Equal(t, "new_block_linked|longest_chain_found", status.String())
	assert.Equal(t, "none", chain.AttachStatusNone.String())
}

func TestExecutionStatus_Transitions(t *testing.T) {
	assert.True(t, chain.ExecutionStatusNone.CanTransitionTo(chain.ExecutionStatusSuccess))
	assert.True(t, chain.ExecutionStatusNone.CanTransitionTo(chain.ExecutionStatusFailed))
	assert.False(t, chain.ExecutionStatusFailed.CanTransitionTo(chain.ExecutionStatusSuccess))
	assert.False(t, chain.ExecutionStatusSuccess.CanTransitionTo(chain.ExecutionStatusFailed))
	assert.False(t, chain.ExecutionStatusNone.CanTransitionTo(chain.ExecutionStatusNone))
}
