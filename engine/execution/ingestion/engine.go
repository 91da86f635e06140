package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/AElfProject/AElf-sub008/engine"
	"github.com/AElfProject/AElf-sub008/engine/common/fifoqueue"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// ErrQueueFull is returned when a block is submitted while the engine's queue
// is at capacity.
var ErrQueueFull = errors.New("ingestion queue is full")

// Engine accepts blocks from any number of concurrent sources and feeds them
// to the core one at a time, in submission order.
type Engine struct {
	unit     *engine.Unit
	log      zerolog.Logger
	core     *Core
	cfg      Config
	queue    *fifoqueue.FifoQueue[*chain.Block]
	notifier engine.Notifier
}

var _ module.Component = (*Engine)(nil)

func New(log zerolog.Logger, metrics module.ExecutionMetrics, core *Core, cfg Config) (*Engine, error) {
	queue, err := fifoqueue.NewFifoQueue[*chain.Block](
		fifoqueue.WithCapacity(cfg.QueueCapacity),
		fifoqueue.WithLengthObserver(func(length int) {
			metrics.ExecutionIngestionQueueSize(uint(length))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create block queue: %w", err)
	}

	return &Engine{
		unit:     engine.NewUnit(),
		log:      log.With().Str("engine", "ingestion").Logger(),
		core:     core,
		cfg:      cfg,
		queue:    queue,
		notifier: engine.NewNotifier(),
	}, nil
}

// Start launches the worker processing the queued blocks. Exceptions are
// thrown to the signaler context.
func (e *Engine) Start(ctx irrecoverable.SignalerContext) {
	e.unit.Launch(func() {
		e.processLoop(ctx)
	})
}

// Ready returns a channel that will close when the engine has
// successfully started.
func (e *Engine) Ready() <-chan struct{} {
	return e.unit.Ready()
}

// Done returns a channel that will close when the engine has
// successfully stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.unit.Done()
}

// SubmitBlock queues a block for attachment and execution. Its transactions
// must have been stored before.
//
// Expected errors during normal operations:
//   - ErrQueueFull if the queue is at capacity
func (e *Engine) SubmitBlock(block *chain.Block) error {
	if !e.queue.Push(block) {
		return ErrQueueFull
	}
	e.notifier.Notify()
	return nil
}

func (e *Engine) processLoop(ctx irrecoverable.SignalerContext) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.unit.Quit():
			return
		case <-e.notifier.Channel():
			err := e.processAvailable(ctx)
			if err != nil {
				ctx.Throw(err)
				return
			}
		}
	}
}

func (e *Engine) processAvailable(ctx irrecoverable.SignalerContext) error {
	for {
		if ctx.Err() != nil || e.unit.Ctx().Err() != nil {
			return nil
		}
		block, ok := e.queue.Pop()
		if !ok {
			return nil
		}
		err := e.processBlock(ctx, block)
		if err != nil {
			return err
		}
	}
}

// processBlock hands the block to the core. Invalid blocks are dropped,
// infrastructure errors are retried with exponential backoff and the block is
// dropped when retries are exhausted. Only exceptions are returned.
func (e *Engine) processBlock(ctx context.Context, block *chain.Block) error {
	log := e.log.With().
		Hex("block_id", logging.Entity(block)).
		Uint64("height", block.Height()).
		Logger()

	backoff := retry.NewExponential(e.cfg.RetryDelay)
	backoff = retry.WithCappedDuration(e.cfg.MaxRetryDelay, backoff)
	backoff = retry.WithMaxRetries(e.cfg.MaxRetries, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, err := e.core.ProcessBlock(ctx, block)
		if err == nil {
			log.Debug().Str("status", status.String()).Msg("block processed")
			return nil
		}
		if state.IsInvalidExtensionError(err) || irrecoverable.IsException(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("could not process block, retrying")
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		return nil
	case state.IsInvalidExtensionError(err):
		log.Warn().Err(err).Msg("dropping invalid block")
		return nil
	case irrecoverable.IsException(err):
		return fmt.Errorf("could not process block %v: %w", block.ID(), err)
	case errors.Is(err, context.Canceled):
		return nil
	default:
		log.Error().Err(err).Int("attempts", attempt).Msg("giving up on block")
		return nil
	}
}
