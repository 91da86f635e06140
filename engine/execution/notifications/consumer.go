package notifications

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// BestChainAdvanced is published after the best chain moved to a higher block.
type BestChainAdvanced struct {
	BlockID        chain.Identifier
	Height         uint64
	ExecutedBlocks []*chain.Block
}

// Consumer consumes the outbound notifications of the execution core.
// Implementations must be non-blocking: they are invoked synchronously by the
// component publishing the event, unless wrapped in an AsyncDistributor.
type Consumer interface {
	// OnBlockAccepted is called for every block that executed successfully
	// and passed post-execution validation.
	OnBlockAccepted(block *chain.Block)

	// OnBestChainAdvanced is called after the best chain pointer moved to a
	// higher block. ExecutedBlocks holds the blocks of the run, oldest first.
	OnBestChainAdvanced(event BestChainAdvanced)

	// OnUnexecutableTransactions is called when a block was produced without
	// some of the cancellable transactions, which were not reached before the
	// deadline.
	OnUnexecutableTransactions(header *chain.Header, txIDs []chain.Identifier)
}
