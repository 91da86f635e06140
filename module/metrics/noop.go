package metrics

import (
	"time"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

type NoopCollector struct{}

var (
	_ module.CacheMetrics     = (*NoopCollector)(nil)
	_ module.ChainMetrics     = (*NoopCollector)(nil)
	_ module.ExecutionMetrics = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) CacheEntries(resource string, entries uint)                         {}
func (nc *NoopCollector) CacheHit(resource string)                                           {}
func (nc *NoopCollector) CacheNotFound(resource string)                                      {}
func (nc *NoopCollector) CacheMiss(resource string)                                          {}
func (nc *NoopCollector) BlockAttached(status chain.AttachStatus)                            {}
func (nc *NoopCollector) ChainHeights(best uint64, longest uint64, lib uint64)               {}
func (nc *NoopCollector) Branches(branches int, notLinked int)                               {}
func (nc *NoopCollector) BlocksPruned(reason string, count int)                              {}
func (nc *NoopCollector) ExecutionBlockExecuted(dur time.Duration, txCount int)              {}
func (nc *NoopCollector) ExecutionTransactionExecuted(status chain.TransactionStatus)        {}
func (nc *NoopCollector) ExecutionPipelineRun(dur time.Duration, outcome string, blocks int) {}
func (nc *NoopCollector) ExecutionIngestionQueueSize(size uint)                              {}
