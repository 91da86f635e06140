package chain

import (
	"encoding/binary"
	"sort"
)

// BlockStateSet is the staged state diff produced by executing one block. It is
// kept until the block becomes irreversible and is then merged into the world
// state.
type BlockStateSet struct {
	BlockID  Identifier
	ParentID Identifier
	Height   uint64
	Changes  map[string][]byte
	Deletes  map[string]bool
}

// NewBlockStateSet creates an empty state set.
func NewBlockStateSet() *BlockStateSet {
	return &BlockStateSet{
		Changes: make(map[string][]byte),
		Deletes: make(map[string]bool),
	}
}

// Get returns the value staged for the key. The second return value is false if
// the key is untouched by this set; a deleted key returns (nil, true).
func (s *BlockStateSet) Get(key string) ([]byte, bool) {
	if s.Deletes[key] {
		return nil, true
	}
	value, ok := s.Changes[key]
	return value, ok
}

// Set stages a new value.
func (s *BlockStateSet) Set(key string, value []byte) {
	delete(s.Deletes, key)
	s.Changes[key] = value
}

// Delete stages a deletion.
func (s *BlockStateSet) Delete(key string) {
	delete(s.Changes, key)
	s.Deletes[key] = true
}

// Merge applies the changes and deletes of other on top of s.
func (s *BlockStateSet) Merge(changes map[string][]byte, deletes map[string]bool) {
	for key, value := range changes {
		s.Set(key, value)
	}
	for key := range deletes {
		s.Delete(key)
	}
}

// SortedChanges returns the changed keys in lexicographic order.
func (s *BlockStateSet) SortedChanges() []string {
	keys := make([]string, 0, len(s.Changes))
	for key := range s.Changes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SortedDeletes returns the deleted keys in lexicographic order.
func (s *BlockStateSet) SortedDeletes() []string {
	keys := make([]string, 0, len(s.Deletes))
	for key := range s.Deletes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StateRoot commits to the diff: merkle root over the sorted change leaves
// followed by the sorted delete leaves. Keys are length-prefixed and leaves
// carry their kind, so distinct diffs never share a leaf.
func (s *BlockStateSet) StateRoot() Identifier {
	leaves := make([]Identifier, 0, len(s.Changes)+len(s.Deletes))
	for _, key := range s.SortedChanges() {
		leaves = append(leaves, stateLeaf(changeLeaf, key, s.Changes[key]))
	}
	for _, key := range s.SortedDeletes() {
		leaves = append(leaves, stateLeaf(deleteLeaf, key, nil))
	}
	return MerkleRoot(leaves)
}

const (
	changeLeaf byte = 0x00
	deleteLeaf byte = 0x01
)

func stateLeaf(kind byte, key string, value []byte) Identifier {
	var prefix [5]byte
	prefix[0] = kind
	binary.BigEndian.PutUint32(prefix[1:], uint32(len(key)))
	return HashToID(prefix[:], []byte(key), value)
}
