package read_block

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/cmd/util/cmd/common"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	storagebadger "github.com/AElfProject/AElf-sub008/storage/badger"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

func TestReadBlock(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		all := storagebadger.InitAll(metrics.NewNoopCollector(), db)
		genesis := unittest.GenesisFixture()
		st, err := protocol.Bootstrap(unittest.Logger(), db, metrics.NewNoopCollector(), trace.NewNoopTracer(), all, genesis)
		require.NoError(t, err)

		block := unittest.BlockWithParentFixture(genesis.Header)
		_, err = st.AttachBlock(context.Background(), block)
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, ReadBlock(&out, all, block.ID(), false))

		var printed common.Block
		require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
		assert.Equal(t, block.ID().String(), printed.ID)
		assert.Equal(t, genesis.ID().String(), printed.ParentID)
		assert.Equal(t, uint64(1), printed.Height)
		assert.Equal(t, chain.ExecutionStatusNone.String(), printed.ExecutionStatus)

		err = ReadBlock(&out, all, unittest.IdentifierFixture(), false)
		assert.Error(t, err)
	})
}
