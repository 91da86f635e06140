package logevents

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Filter selects the log events emitted by one contract under one name.
type Filter struct {
	Address string
	Name    string
}

// Event is a log event together with the transaction and block that emitted
// it.
type Event struct {
	chain.LogEvent
	BlockID       chain.Identifier
	Height        uint64
	TransactionID chain.Identifier
	// Index is the position of the emitting transaction in the block.
	Index int
}

// Processor handles the log events matching its filter for blocks that joined
// the best chain. Process is called once per block containing matching
// events, with the events in emission order.
type Processor interface {
	Filter() Filter
	Process(block *chain.Block, events []Event) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc struct {
	filter Filter
	fn     func(block *chain.Block, events []Event) error
}

var _ Processor = (*ProcessorFunc)(nil)

func NewProcessorFunc(filter Filter, fn func(block *chain.Block, events []Event) error) *ProcessorFunc {
	return &ProcessorFunc{filter: filter, fn: fn}
}

func (p *ProcessorFunc) Filter() Filter {
	return p.filter
}

func (p *ProcessorFunc) Process(block *chain.Block, events []Event) error {
	return p.fn(block, events)
}
