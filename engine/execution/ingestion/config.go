package ingestion

import (
	"time"
)

// Config holds the tunables of the ingestion core and engine.
type Config struct {
	// QueueCapacity is the number of blocks the engine buffers before
	// rejecting new ones.
	QueueCapacity int
	// ProductionDeadline bounds the time spent on cancellable transactions
	// when producing a block.
	ProductionDeadline time.Duration
	// RetryDelay is the initial delay before retrying a block after an
	// infrastructure error.
	RetryDelay time.Duration
	// MaxRetryDelay caps the exponential retry delay.
	MaxRetryDelay time.Duration
	// MaxRetries is the number of retries before a block is given up.
	MaxRetries uint64
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity:      10_000,
		ProductionDeadline: 500 * time.Millisecond,
		RetryDelay:         100 * time.Millisecond,
		MaxRetryDelay:      5 * time.Second,
		MaxRetries:         5,
	}
}
