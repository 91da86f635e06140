package notifications

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine"
	"github.com/AElfProject/AElf-sub008/engine/common/fifoqueue"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

// DefaultEventQueueCapacity is the number of events an AsyncDistributor buffers
// before dropping new ones.
const DefaultEventQueueCapacity = 10_000

type event struct {
	name    string
	deliver func(Consumer)
}

// AsyncDistributor decouples publishers from consumers: events are queued and
// delivered in publication order by a single worker goroutine. A panicking
// consumer does not prevent delivery to the other consumers; failures of one
// event are aggregated and logged.
type AsyncDistributor struct {
	unit      *engine.Unit
	log       zerolog.Logger
	queue     *fifoqueue.FifoQueue[event]
	notifier  engine.Notifier
	consumers []Consumer
	lock      sync.RWMutex
	startOnce sync.Once
}

var _ Consumer = (*AsyncDistributor)(nil)
var _ module.ReadyDoneAware = (*AsyncDistributor)(nil)

func NewAsyncDistributor(log zerolog.Logger, capacity int) (*AsyncDistributor, error) {
	queue, err := fifoqueue.NewFifoQueue[event](fifoqueue.WithCapacity(capacity))
	if err != nil {
		return nil, fmt.Errorf("could not create event queue: %w", err)
	}
	return &AsyncDistributor{
		unit:     engine.NewUnit(),
		log:      log.With().Str("component", "async_distributor").Logger(),
		queue:    queue,
		notifier: engine.NewNotifier(),
	}, nil
}

// AddConsumer subscribes a consumer to all events.
func (d *AsyncDistributor) AddConsumer(consumer Consumer) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.consumers = append(d.consumers, consumer)
}

// Ready starts the delivery worker on the first call.
func (d *AsyncDistributor) Ready() <-chan struct{} {
	d.startOnce.Do(func() {
		d.unit.Launch(d.loop)
	})
	return d.unit.Ready()
}

// Done stops the worker once the events queued so far are delivered.
func (d *AsyncDistributor) Done() <-chan struct{} {
	return d.unit.Done()
}

func (d *AsyncDistributor) OnBlockAccepted(block *chain.Block) {
	d.enqueue("block_accepted", func(c Consumer) { c.OnBlockAccepted(block) })
}

func (d *AsyncDistributor) OnBestChainAdvanced(e BestChainAdvanced) {
	d.enqueue("best_chain_advanced", func(c Consumer) { c.OnBestChainAdvanced(e) })
}

func (d *AsyncDistributor) OnUnexecutableTransactions(header *chain.Header, txIDs []chain.Identifier) {
	d.enqueue("unexecutable_transactions", func(c Consumer) { c.OnUnexecutableTransactions(header, txIDs) })
}

func (d *AsyncDistributor) enqueue(name string, deliver func(Consumer)) {
	if !d.queue.Push(event{name: name, deliver: deliver}) {
		d.log.Warn().Str("event", name).Msg("event queue full, dropping event")
		return
	}
	d.notifier.Notify()
}

func (d *AsyncDistributor) loop() {
	for {
		select {
		case <-d.unit.Quit():
			d.deliverPending()
			return
		case <-d.notifier.Channel():
			d.deliverPending()
		}
	}
}

func (d *AsyncDistributor) deliverPending() {
	for {
		e, ok := d.queue.Pop()
		if !ok {
			return
		}
		err := d.deliver(e)
		if err != nil {
			d.log.Error().Err(err).Str("event", e.name).Msg("event consumers failed")
		}
	}
}

func (d *AsyncDistributor) deliver(e event) error {
	d.lock.RLock()
	defer d.lock.RUnlock()

	var result *multierror.Error
	for i, consumer := range d.consumers {
		err := safeDeliver(consumer, e.deliver)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("consumer %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}

func safeDeliver(consumer Consumer, deliver func(Consumer)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	deliver(consumer)
	return nil
}
