package operation

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

func TestChainBlockLinkInsertUpdateRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		link := &chain.ChainBlockLink{
			BlockID:  unittest.IdentifierFixture(),
			ParentID: unittest.IdentifierFixture(),
			Height:   7,
		}

		err := db.Update(InsertChainBlockLink(link))
		require.NoError(t, err)

		err = db.Update(InsertChainBlockLink(link))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		link.ExecutionStatus = chain.ExecutionStatusSuccess
		err = db.Update(UpdateChainBlockLink(link))
		require.NoError(t, err)

		var actual chain.ChainBlockLink
		err = db.View(RetrieveChainBlockLink(link.BlockID, &actual))
		require.NoError(t, err)
		assert.Equal(t, *link, actual)

		err = db.Update(RemoveChainBlockLink(link.BlockID))
		require.NoError(t, err)
		err = db.View(RetrieveChainBlockLink(link.BlockID, &actual))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = db.Update(UpdateChainBlockLink(link))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestChildrenAndHeightIndex(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		parentID := unittest.IdentifierFixture()
		otherParentID := unittest.IdentifierFixture()
		children := unittest.IdentifierListFixture(3)

		for _, child := range children {
			require.NoError(t, db.Update(IndexChild(parentID, child)))
			require.NoError(t, db.Update(IndexHeight(5, child)))
		}
		require.NoError(t, db.Update(IndexChild(otherParentID, unittest.IdentifierFixture())))
		require.NoError(t, db.Update(IndexHeight(6, unittest.IdentifierFixture())))

		var actual []chain.Identifier
		require.NoError(t, db.View(LookupChildren(parentID, &actual)))
		assert.ElementsMatch(t, children, actual)

		require.NoError(t, db.View(LookupBlocksAtHeight(5, &actual)))
		assert.ElementsMatch(t, children, actual)

		require.NoError(t, db.Update(RemoveChildIndex(parentID, children[0])))
		require.NoError(t, db.Update(RemoveHeightIndex(5, children[1])))

		require.NoError(t, db.View(LookupChildren(parentID, &actual)))
		assert.ElementsMatch(t, children[1:], actual)
		require.NoError(t, db.View(LookupBlocksAtHeight(5, &actual)))
		assert.ElementsMatch(t, []chain.Identifier{children[0], children[2]}, actual)

		require.NoError(t, db.View(LookupChildren(unittest.IdentifierFixture(), &actual)))
		assert.Empty(t, actual)
	})
}
