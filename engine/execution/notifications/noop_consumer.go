package notifications

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// NoopConsumer is an implementation of the notifications consumer that
// doesn't do anything.
type NoopConsumer struct{}

var _ Consumer = (*NoopConsumer)(nil)

func NewNoopConsumer() *NoopConsumer {
	nc := &NoopConsumer{}
	return nc
}

func (*NoopConsumer) OnBlockAccepted(*chain.Block) {}

func (*NoopConsumer) OnBestChainAdvanced(BestChainAdvanced) {}

func (*NoopConsumer) OnUnexecutableTransactions(*chain.Header, []chain.Identifier) {}
