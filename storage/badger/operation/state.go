package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// mergedMarker records the last block merged into the world state.
type mergedMarker struct {
	BlockID chain.Identifier
	Height  uint64
}

// InsertBlockStateSet inserts the staged state set of a block.
// Error returns:
//   - storage.ErrAlreadyExists if the block already has a state set
func InsertBlockStateSet(set *chain.BlockStateSet) func(*badger.Txn) error {
	return insert(makePrefix(codeBlockStateSet, set.BlockID), set)
}

// RetrieveBlockStateSet retrieves the staged state set of a block.
// Error returns:
//   - storage.ErrNotFound if the block has no state set
func RetrieveBlockStateSet(blockID chain.Identifier, set *chain.BlockStateSet) func(*badger.Txn) error {
	return retrieve(makePrefix(codeBlockStateSet, blockID), set)
}

// BlockStateSetExists checks whether the block has a staged state set.
func BlockStateSetExists(blockID chain.Identifier, setExists *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeBlockStateSet, blockID), setExists)
}

// RemoveBlockStateSet removes the staged state set of a block.
func RemoveBlockStateSet(blockID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeBlockStateSet, blockID))
}

// UpsertWorldStateValue sets a key of the world state.
func UpsertWorldStateValue(key string, value []byte) func(*badger.Txn) error {
	return upsert(makePrefix(codeWorldState, key), value)
}

// RetrieveWorldStateValue reads a key of the world state.
// Error returns:
//   - storage.ErrNotFound if the key is not set
func RetrieveWorldStateValue(key string, value *[]byte) func(*badger.Txn) error {
	return retrieve(makePrefix(codeWorldState, key), value)
}

// RemoveWorldStateValue deletes a key of the world state.
func RemoveWorldStateValue(key string) func(*badger.Txn) error {
	return remove(makePrefix(codeWorldState, key))
}

// UpsertWorldStateMerged moves the merged marker.
func UpsertWorldStateMerged(blockID chain.Identifier, height uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeWorldStateMerged), mergedMarker{BlockID: blockID, Height: height})
}

// RetrieveWorldStateMerged reads the merged marker.
// Error returns:
//   - storage.ErrNotFound if no block was merged yet
func RetrieveWorldStateMerged(blockID *chain.Identifier, height *uint64) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var marker mergedMarker
		err := retrieve(makePrefix(codeWorldStateMerged), &marker)(tx)
		if err != nil {
			return err
		}
		*blockID = marker.BlockID
		*height = marker.Height
		return nil
	}
}
