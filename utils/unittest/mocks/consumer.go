package mocks

import (
	"sync"

	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Consumer records every notification it receives.
type Consumer struct {
	mu           sync.Mutex
	accepted     []chain.Identifier
	advanced     []notifications.BestChainAdvanced
	unexecutable map[chain.Identifier][]chain.Identifier
}

var _ notifications.Consumer = (*Consumer)(nil)

func NewConsumer() *Consumer {
	return &Consumer{unexecutable: make(map[chain.Identifier][]chain.Identifier)}
}

func (c *Consumer) OnBlockAccepted(block *chain.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accepted = append(c.accepted, block.ID())
}

func (c *Consumer) OnBestChainAdvanced(event notifications.BestChainAdvanced) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanced = append(c.advanced, event)
}

func (c *Consumer) OnUnexecutableTransactions(header *chain.Header, txIDs []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unexecutable[header.ParentID] = append(c.unexecutable[header.ParentID], txIDs...)
}

// Accepted returns the ids of the accepted blocks, in notification order.
func (c *Consumer) Accepted() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chain.Identifier(nil), c.accepted...)
}

// Advanced returns the best chain advancements, in notification order.
func (c *Consumer) Advanced() []notifications.BestChainAdvanced {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notifications.BestChainAdvanced(nil), c.advanced...)
}

// Unexecutable returns the unexecutable transactions of blocks built on the
// given parent.
func (c *Consumer) Unexecutable(parentID chain.Identifier) []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chain.Identifier(nil), c.unexecutable[parentID]...)
}
