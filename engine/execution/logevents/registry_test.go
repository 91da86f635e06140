package logevents_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AElfProject/AElf-sub008/engine/execution/logevents"
	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/utils/unittest"
)

type results struct {
	byBlock map[chain.Identifier][]*chain.TransactionResult
	reads   int
}

func (r *results) ByBlockID(blockID chain.Identifier) ([]*chain.TransactionResult, error) {
	r.reads++
	res, ok := r.byBlock[blockID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return res, nil
}

var (
	transferred = logevents.Filter{Address: "token", Name: "Transferred"}
	burned      = logevents.Filter{Address: "token", Name: "Burned"}
	elected     = logevents.Filter{Address: "election", Name: "Elected"}
)

func logEvent(f logevents.Filter, indexed string) chain.LogEvent {
	return chain.LogEvent{Address: f.Address, Name: f.Name, Indexed: [][]byte{[]byte(indexed)}}
}

// blockWithLogs builds a block whose transaction i emitted logs[i] and
// stores the matching results.
func (r *results) blockWithLogs(status chain.TransactionStatus, logs ...[]chain.LogEvent) *chain.Block {
	block := unittest.BlockFixture()
	var blooms []types.Bloom
	var res []*chain.TransactionResult
	for _, txLogs := range logs {
		var txBloom types.Bloom
		for _, l := range txLogs {
			txBloom = chain.MergeBlooms(txBloom, l.Bloom())
		}
		blooms = append(blooms, txBloom)
		res = append(res, &chain.TransactionResult{
			TransactionID: unittest.IdentifierFixture(),
			Status:        status,
			Logs:          txLogs,
			Bloom:         txBloom,
		})
	}
	block.Header.Bloom = chain.MergeBlooms(blooms...)
	for _, result := range res {
		result.BlockID = block.ID()
		result.BlockHeight = block.Height()
	}
	r.byBlock[block.ID()] = res
	return block
}

type recorder struct {
	filter logevents.Filter
	name   string
	calls  *[]string
	events []logevents.Event
	err    error
}

func (p *recorder) Filter() logevents.Filter {
	return p.filter
}

func (p *recorder) Process(_ *chain.Block, events []logevents.Event) error {
	*p.calls = append(*p.calls, p.name)
	p.events = append(p.events, events...)
	return p.err
}

func TestRegistry_DispatchesMatchingEvents(t *testing.T) {
	store := &results{byBlock: make(map[chain.Identifier][]*chain.TransactionResult)}
	registry := logevents.NewRegistry(unittest.Logger(), store)

	var calls []string
	first := &recorder{filter: transferred, name: "first", calls: &calls}
	second := &recorder{filter: transferred, name: "second", calls: &calls}
	burn := &recorder{filter: burned, name: "burn", calls: &calls}
	registry.Register(first)
	registry.Register(burn)
	registry.Register(second)

	block := store.blockWithLogs(chain.TransactionStatusMined,
		[]chain.LogEvent{logEvent(transferred, "alice"), logEvent(elected, "bp1")},
		nil,
		[]chain.LogEvent{logEvent(transferred, "bob")},
	)
	registry.OnBestChainAdvanced(notifications.BestChainAdvanced{
		BlockID:        block.ID(),
		Height:         block.Height(),
		ExecutedBlocks: []*chain.Block{block},
	})

	assert.Equal(t, []string{"first", "second"}, calls)
	require.Len(t, first.events, 2)
	assert.Equal(t, []byte("alice"), first.events[0].Indexed[0])
	assert.Equal(t, 0, first.events[0].Index)
	assert.Equal(t, []byte("bob"), first.events[1].Indexed[0])
	assert.Equal(t, 2, first.events[1].Index)
	assert.Equal(t, block.ID(), first.events[1].BlockID)
	assert.Equal(t, first.events, second.events)
	assert.Empty(t, burn.events)
}

func TestRegistry_SkipsBlocksByBloom(t *testing.T) {
	store := &results{byBlock: make(map[chain.Identifier][]*chain.TransactionResult)}
	registry := logevents.NewRegistry(unittest.Logger(), store)

	var calls []string
	registry.Register(&recorder{filter: burned, name: "burn", calls: &calls})

	block := store.blockWithLogs(chain.TransactionStatusMined, []chain.LogEvent{logEvent(elected, "bp1")})
	require.NoError(t, registry.ProcessBlock(block, []logevents.Processor{&recorder{filter: burned, calls: &calls}}))
	assert.Zero(t, store.reads)
	assert.Empty(t, calls)
}

func TestRegistry_IgnoresFailedTransactions(t *testing.T) {
	store := &results{byBlock: make(map[chain.Identifier][]*chain.TransactionResult)}
	registry := logevents.NewRegistry(unittest.Logger(), store)

	var calls []string
	p := &recorder{filter: transferred, name: "transfers", calls: &calls}
	block := store.blockWithLogs(chain.TransactionStatusFailed, []chain.LogEvent{logEvent(transferred, "alice")})
	require.NoError(t, registry.ProcessBlock(block, []logevents.Processor{p}))
	assert.Equal(t, 1, store.reads)
	assert.Empty(t, calls)
}

func TestRegistry_ProcessorErrors(t *testing.T) {
	store := &results{byBlock: make(map[chain.Identifier][]*chain.TransactionResult)}
	registry := logevents.NewRegistry(unittest.Logger(), store)

	var calls []string
	failing := &recorder{filter: transferred, name: "failing", calls: &calls, err: errors.New("boom")}
	next := &recorder{filter: transferred, name: "next", calls: &calls}
	block := store.blockWithLogs(chain.TransactionStatusMined, []chain.LogEvent{logEvent(transferred, "alice")})

	err := registry.ProcessBlock(block, []logevents.Processor{failing, next})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"failing", "next"}, calls)

	// results missing for a block that may contain events
	unknown := unittest.BlockFixture()
	unknown.Header.Bloom = logEvent(transferred, "x").Bloom()
	err = registry.ProcessBlock(unknown, []logevents.Processor{next})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegistry_ProcessorFunc(t *testing.T) {
	store := &results{byBlock: make(map[chain.Identifier][]*chain.TransactionResult)}
	registry := logevents.NewRegistry(unittest.Logger(), store)

	var heights []uint64
	registry.Register(logevents.NewProcessorFunc(elected, func(block *chain.Block, events []logevents.Event) error {
		for _, e := range events {
			heights = append(heights, e.Height)
		}
		return nil
	}))

	a := store.blockWithLogs(chain.TransactionStatusMined, []chain.LogEvent{logEvent(elected, "bp1")})
	b := store.blockWithLogs(chain.TransactionStatusMined, []chain.LogEvent{logEvent(elected, "bp2"), logEvent(elected, "bp3")})
	registry.OnBestChainAdvanced(notifications.BestChainAdvanced{ExecutedBlocks: []*chain.Block{a, b}})

	assert.Equal(t, []uint64{a.Height(), b.Height(), b.Height()}, heights)
}
