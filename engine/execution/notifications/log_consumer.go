package notifications

import (
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// LogConsumer is an implementation of the notifications consumer that logs a
// message for each event.
type LogConsumer struct {
	log zerolog.Logger
}

var _ Consumer = (*LogConsumer)(nil)

func NewLogConsumer(log zerolog.Logger) *LogConsumer {
	lc := &LogConsumer{
		log: log.With().Str("component", "execution_notifications").Logger(),
	}
	return lc
}

func (lc *LogConsumer) OnBlockAccepted(block *chain.Block) {
	lc.log.Debug().
		Uint64("height", block.Height()).
		Hex("block_id", logging.Entity(block)).
		Hex("parent_id", logging.ID(block.ParentID())).
		Int("transactions", len(block.TransactionIDs)).
		Msg("block accepted")
}

func (lc *LogConsumer) OnBestChainAdvanced(event BestChainAdvanced) {
	entry := lc.log.Info().
		Uint64("height", event.Height).
		Hex("block_id", logging.ID(event.BlockID)).
		Int("executed_blocks", len(event.ExecutedBlocks))

	if len(event.ExecutedBlocks) > 0 {
		entry.Uint64("from_height", event.ExecutedBlocks[0].Height())
	}

	entry.Msg("best chain advanced")
}

func (lc *LogConsumer) OnUnexecutableTransactions(header *chain.Header, txIDs []chain.Identifier) {
	lc.log.Warn().
		Uint64("height", header.Height).
		Hex("parent_id", logging.ID(header.ParentID)).
		Strs("transaction_ids", logging.IDs(txIDs)).
		Msg("transactions not executed before deadline")
}
