package computer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/module/trace"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
	"github.com/AElfProject/AElf-sub008/utils/unittest/mocks"
)

// staticViews serves every parent from the same fixed state.
type staticViews map[string][]byte

func (s staticViews) NewBlockView(chain.Identifier) (*delta.View, error) {
	return delta.NewView(func(key string) ([]byte, error) {
		return s[key], nil
	}), nil
}

func newSequential(consumer *mocks.Consumer, state staticViews) computer.BlockExecutor {
	service := computer.NewSequentialExecutingService(mocks.NewKVExecutor(), metrics.NewNoopCollector())
	return computer.NewBlockExecutor(unittest.Logger(), metrics.NewNoopCollector(), trace.NewNoopTracer(), state, service, consumer)
}

func newParallel(t testing.TB, consumer *mocks.Consumer, state staticViews) computer.BlockExecutor {
	service := computer.NewParallelExecutingService(unittest.Logger(), mocks.NewKVExecutor(), metrics.NewNoopCollector(), 4, computer.BySender)
	t.Cleanup(service.Stop)
	return computer.NewBlockExecutor(unittest.Logger(), metrics.NewNoopCollector(), trace.NewNoopTracer(), state, service, consumer)
}

func TestExecuteBlock_Results(t *testing.T) {
	state := staticViews{"counter": nil, "kept": []byte("kept")}
	consumer := mocks.NewConsumer()
	executor := newSequential(consumer, state)
	header := unittest.HeaderFixture()

	txs := chain.Transactions{
		mocks.SetTransaction("alice", "a", []byte("1"), 0),
		mocks.IncrementTransaction("alice", "counter", 1),
		mocks.FailTransaction("bob", "a", 2),
		mocks.EmitTransaction("bob", "Transferred", "a", 3),
		mocks.Transaction("bob", mocks.MethodDelete, mocks.Params{Key: "kept"}, 4),
		mocks.Transaction("bob", "unknown", mocks.Params{}, 5),
	}
	executed, err := executor.ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(t, err)

	block := executed.Block
	require.Len(t, executed.ReturnSets, len(txs))
	assert.Equal(t, txs.IDs(), block.TransactionIDs)
	assert.Empty(t, executed.Unexecutable)

	statuses := make([]chain.TransactionStatus, 0, len(txs))
	for _, rs := range executed.ReturnSets {
		statuses = append(statuses, rs.Status)
	}
	assert.Equal(t, []chain.TransactionStatus{
		chain.TransactionStatusMined,
		chain.TransactionStatusMined,
		chain.TransactionStatusFailed,
		chain.TransactionStatusMined,
		chain.TransactionStatusMined,
		chain.TransactionStatusFailed,
	}, statuses)

	// writes of the failed transaction are discarded
	value, ok := executed.StateSet.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), value)
	assert.Nil(t, executed.ReturnSets[2].StateChanges)
	assert.Equal(t, uint64(1), mocks.DecodeCounter(executed.StateSet.Changes["counter"]))
	assert.True(t, executed.StateSet.Deletes["kept"])

	// header commitments
	assert.Equal(t, header.ParentID, block.ParentID())
	assert.Equal(t, header.Height, block.Height())
	assert.Equal(t, chain.TransactionRoot(txs.IDs()), block.Header.TransactionRoot)
	assert.Equal(t, chain.StatusRoot(executed.ReturnSets), block.Header.StatusRoot)
	assert.Equal(t, executed.StateSet.StateRoot(), block.Header.StateRoot)
	assert.True(t, chain.BloomMayContainEvent(block.Header.Bloom, "kv", "Transferred"))
	assert.True(t, chain.BloomMayContainEvent(executed.ReturnSets[3].Bloom, "kv", "Transferred"))

	assert.Equal(t, block.ID(), executed.StateSet.BlockID)
	assert.Equal(t, header.ParentID, executed.StateSet.ParentID)
	assert.Equal(t, header.Height, executed.StateSet.Height)

	results := executed.TransactionResults()
	require.Len(t, results, len(txs))
	assert.Equal(t, block.ID(), results[0].BlockID)
	assert.Equal(t, "requested failure", results[2].Error)
}

func TestExecuteBlock_Deterministic(t *testing.T) {
	header := unittest.HeaderFixture()
	txs := chain.Transactions{
		mocks.SetTransaction("alice", "a", []byte("1"), 0),
		mocks.IncrementTransaction("bob", "counter", 1),
		mocks.EmitTransaction("carol", "Minted", "b", 2),
	}

	first, err := newSequential(mocks.NewConsumer(), staticViews{}).ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(t, err)
	second, err := newSequential(mocks.NewConsumer(), staticViews{}).ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(t, err)
	parallel, err := newParallel(t, mocks.NewConsumer(), staticViews{}).ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Block.ID(), second.Block.ID())
	assert.Equal(t, first.Block.ID(), parallel.Block.ID())
}

func TestExecuteBlock_CancelledContext(t *testing.T) {
	consumer := mocks.NewConsumer()
	executor := newSequential(consumer, staticViews{})
	header := unittest.HeaderFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	system := chain.Transactions{mocks.SetTransaction("system", "round", []byte("1"), 0)}
	user := chain.Transactions{
		mocks.SetTransaction("alice", "a", []byte("1"), 1),
		mocks.SetTransaction("bob", "b", []byte("1"), 2),
	}
	executed, err := executor.ExecuteBlock(ctx, header, system, user)
	require.NoError(t, err)

	// non-cancellable transactions always run
	assert.Equal(t, system.IDs(), executed.Block.TransactionIDs)
	assert.ElementsMatch(t, user.IDs(), executed.Unexecutable)
	assert.ElementsMatch(t, user.IDs(), consumer.Unexecutable(header.ParentID))
	_, ok := executed.StateSet.Get("a")
	assert.False(t, ok)
}

func TestExecuteBlock_Deadline(t *testing.T) {
	consumer := mocks.NewConsumer()
	executor := newSequential(consumer, staticViews{})
	header := unittest.HeaderFixture()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	user := chain.Transactions{
		mocks.SleepTransaction("alice", 100*time.Millisecond, 0),
		mocks.SleepTransaction("alice", 100*time.Millisecond, 1),
		mocks.SetTransaction("alice", "a", []byte("1"), 2),
	}
	executed, err := executor.ExecuteBlock(ctx, header, nil, user)
	require.NoError(t, err)

	// a started transaction is never interrupted, the ones after the deadline
	// are excluded from the block
	assert.LessOrEqual(t, len(executed.Block.TransactionIDs), 1)
	assert.Len(t, executed.Unexecutable, len(user)-len(executed.Block.TransactionIDs))
	assert.Contains(t, executed.Unexecutable, user[2].ID())
	assert.Equal(t, chain.TransactionRoot(executed.Block.TransactionIDs), executed.Block.Header.TransactionRoot)
}

func TestExecuteBlock_InfrastructureError(t *testing.T) {
	executor := newSequential(mocks.NewConsumer(), staticViews{})
	txs := chain.Transactions{
		mocks.SetTransaction("alice", "a", []byte("1"), 0),
		mocks.CrashTransaction("alice", 1),
	}
	_, err := executor.ExecuteBlock(context.Background(), unittest.HeaderFixture(), txs, nil)
	require.ErrorIs(t, err, mocks.ErrCrash)
}

func TestParallelExecutingService_Conflicts(t *testing.T) {
	header := unittest.HeaderFixture()
	// alice and bob both increment the same counter
	txs := chain.Transactions{
		mocks.IncrementTransaction("alice", "counter", 0),
		mocks.IncrementTransaction("bob", "counter", 1),
		mocks.SetTransaction("carol", "c", []byte("1"), 2),
		mocks.IncrementTransaction("alice", "counter", 3),
	}

	executed, err := newParallel(t, mocks.NewConsumer(), staticViews{}).ExecuteBlock(context.Background(), header, txs, nil)
	require.NoError(t, err)
	assert.Equal(t, txs.IDs(), executed.Block.TransactionIDs)
	assert.Equal(t, uint64(3), mocks.DecodeCounter(executed.StateSet.Changes["counter"]))
	for i, rs := range executed.ReturnSets {
		if txs[i].MethodName == mocks.MethodIncrement {
			assert.NotNil(t, rs.ReturnValue)
		}
	}
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 2}, executed.ReturnSets[1].ReturnValue)
}

// TestParallelExecutingService_MatchesSequential checks that parallel
// execution of random transaction lists yields the block of sequential
// execution.
func TestParallelExecutingService_MatchesSequential(t *testing.T) {
	header := unittest.HeaderFixture()
	senders := []string{"alice", "bob", "carol", "dave"}
	keys := []string{"k0", "k1", "k2", "k3", "k4", "k5"}
	parallel := newParallel(t, mocks.NewConsumer(), staticViews{"k0": []byte("seed")})
	sequential := newSequential(mocks.NewConsumer(), staticViews{"k0": []byte("seed")})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		txs := make(chain.Transactions, 0, n)
		for i := 0; i < n; i++ {
			sender := rapid.SampledFrom(senders).Draw(t, fmt.Sprintf("sender_%d", i))
			key := rapid.SampledFrom(keys).Draw(t, fmt.Sprintf("key_%d", i))
			switch rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("method_%d", i)) {
			case 0:
				txs = append(txs, mocks.SetTransaction(sender, key, []byte(sender), uint64(i)))
			case 1:
				txs = append(txs, mocks.IncrementTransaction(sender, key, uint64(i)))
			case 2:
				txs = append(txs, mocks.FailTransaction(sender, key, uint64(i)))
			default:
				txs = append(txs, mocks.Transaction(sender, mocks.MethodDelete, mocks.Params{Key: key}, uint64(i)))
			}
		}

		expected, err := sequential.ExecuteBlock(context.Background(), header, txs, nil)
		if err != nil {
			t.Fatalf("sequential execution failed: %v", err)
		}
		actual, err := parallel.ExecuteBlock(context.Background(), header, txs, nil)
		if err != nil {
			t.Fatalf("parallel execution failed: %v", err)
		}
		if expected.Block.ID() != actual.Block.ID() {
			t.Fatalf("parallel block %v differs from sequential block %v", actual.Block.ID(), expected.Block.ID())
		}
	})
}
