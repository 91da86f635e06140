package chain

// MerkleRoot computes the root of a binary hash tree over the ordered leaves.
// A level with an odd number of nodes pairs its last node with itself. The root
// of an empty leaf set is ZeroID.
func MerkleRoot(leaves []Identifier) Identifier {
	if len(leaves) == 0 {
		return ZeroID
	}
	level := make([]Identifier, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]Identifier, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, HashToID(level[i][:], level[i+1][:]))
		}
		level = next
	}
	return level[0]
}

// TransactionRoot is the merkle root over the given transaction ids.
func TransactionRoot(txIDs []Identifier) Identifier {
	return MerkleRoot(txIDs)
}

// StatusRoot is the merkle root over the status leaves of the return sets.
func StatusRoot(results ReturnSets) Identifier {
	leaves := make([]Identifier, 0, len(results))
	for _, r := range results {
		leaves = append(leaves, r.StatusLeaf())
	}
	return MerkleRoot(leaves)
}
