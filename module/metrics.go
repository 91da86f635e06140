package module

import (
	"time"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// CacheMetrics is the interface for the storage caches.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheNotFound records the number of times the queried item was not found in either cache or database.
	CacheNotFound(resource string)
	// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
	CacheMiss(resource string)
}

// ChainMetrics reports the shape of the block graph.
type ChainMetrics interface {
	// BlockAttached counts attach calls by resulting status.
	BlockAttached(status chain.AttachStatus)

	// ChainHeights reports the best, longest and last irreversible heights.
	ChainHeights(best uint64, longest uint64, lib uint64)

	// Branches reports the number of live branches and not-linked blocks.
	Branches(branches int, notLinked int)

	// BlocksPruned counts blocks removed from storage, by reason.
	BlocksPruned(reason string, count int)
}

// ExecutionMetrics reports block execution.
type ExecutionMetrics interface {
	// ExecutionBlockExecuted reports the time spent executing a block and the
	// number of transactions it contains.
	ExecutionBlockExecuted(dur time.Duration, txCount int)

	// ExecutionTransactionExecuted counts executed transactions by status.
	ExecutionTransactionExecuted(status chain.TransactionStatus)

	// ExecutionPipelineRun reports one pipeline run with its outcome.
	ExecutionPipelineRun(dur time.Duration, outcome string, blocks int)

	// ExecutionIngestionQueueSize reports the number of blocks waiting for the
	// ingestion engine.
	ExecutionIngestionQueueSize(size uint)
}
