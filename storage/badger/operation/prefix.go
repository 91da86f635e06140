package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

const (

	// codes for special database markers
	codeWorldStateMerged = 1 // id and height of the last block merged into the world state

	// codes for entities
	codeBlock             = 10
	codeTransaction       = 11
	codeChainBlockLink    = 12
	codeChain             = 13
	codeBlockStateSet     = 14
	codeWorldState        = 15
	codeTransactionResult = 16

	// codes for indexes
	codeIndexChild                   = 50 // parent id + child id, no value
	codeIndexHeight                  = 51 // height + block id, no value
	codeIndexTransactionResultByTxID = 52 // block id + tx id -> tx index
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case string:
		return []byte(i)
	case chain.ChainID:
		return []byte(i)
	case chain.Identifier:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
