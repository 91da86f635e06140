package notifications

import (
	"sync"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Distributor subscribes for execution events and distributes them to the
// subscribed consumers, in subscription order.
type Distributor struct {
	consumers []Consumer
	lock      sync.RWMutex
}

var _ Consumer = (*Distributor)(nil)

func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddConsumer subscribes a consumer to all events.
func (d *Distributor) AddConsumer(consumer Consumer) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.consumers = append(d.consumers, consumer)
}

func (d *Distributor) OnBlockAccepted(block *chain.Block) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, consumer := range d.consumers {
		consumer.OnBlockAccepted(block)
	}
}

func (d *Distributor) OnBestChainAdvanced(event BestChainAdvanced) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, consumer := range d.consumers {
		consumer.OnBestChainAdvanced(event)
	}
}

func (d *Distributor) OnUnexecutableTransactions(header *chain.Header, txIDs []chain.Identifier) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, consumer := range d.consumers {
		consumer.OnUnexecutableTransactions(header, txIDs)
	}
}
