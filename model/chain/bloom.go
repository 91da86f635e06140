package chain

import (
	"github.com/ethereum/go-ethereum/core/types"
)

// MergeBlooms returns the OR-combination of the given blooms.
func MergeBlooms(blooms ...types.Bloom) types.Bloom {
	var merged types.Bloom
	for _, b := range blooms {
		for i := range merged {
			merged[i] |= b[i]
		}
	}
	return merged
}

// BloomMayContainEvent checks whether a block or transaction bloom may contain an
// event with the given address and name. False positives are possible, false
// negatives are not.
func BloomMayContainEvent(bloom types.Bloom, address string, name string) bool {
	return bloom.Test([]byte(address)) && bloom.Test([]byte(name))
}
