package node

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/computation/computer"
	"github.com/AElfProject/AElf-sub008/engine/execution/ingestion"
	"github.com/AElfProject/AElf-sub008/engine/execution/logevents"
	"github.com/AElfProject/AElf-sub008/engine/execution/notifications"
	"github.com/AElfProject/AElf-sub008/engine/execution/state"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
	"github.com/AElfProject/AElf-sub008/module/util"
	"github.com/AElfProject/AElf-sub008/module/validation"
	"github.com/AElfProject/AElf-sub008/state/protocol"
	"github.com/AElfProject/AElf-sub008/storage"
	storagebadger "github.com/AElfProject/AElf-sub008/storage/badger"
)

// Metrics is the union of the collectors the node reports to.
type Metrics interface {
	module.CacheMetrics
	module.ChainMetrics
	module.ExecutionMetrics
}

type Config struct {
	ChainID   chain.ChainID
	Ingestion ingestion.Config
	// ExecutionWorkers enables parallel execution of the transaction groups of
	// a block when above 1.
	ExecutionWorkers   int
	EventQueueCapacity int
	MaxFutureDrift     time.Duration
	MaxTransactions    int
}

func DefaultConfig(chainID chain.ChainID) Config {
	return Config{
		ChainID:            chainID,
		Ingestion:          ingestion.DefaultConfig(),
		ExecutionWorkers:   1,
		EventQueueCapacity: notifications.DefaultEventQueueCapacity,
		MaxFutureDrift:     validation.DefaultMaxFutureDrift,
		MaxTransactions:    validation.DefaultMaxTransactions,
	}
}

// Node assembles the execution and finality core on top of a badger
// database: chain state, execution state, block executor, ingestion engine
// and the asynchronous notification fan-out with the log event processors
// subscribed to it.
type Node struct {
	log       zerolog.Logger
	State     *protocol.State
	Storage   *storage.All
	Core      *ingestion.Core
	Engine    *ingestion.Engine
	Events    *notifications.AsyncDistributor
	LogEvents *logevents.Registry

	parallel *computer.ParallelExecutingService
}

var _ module.Component = (*Node)(nil)

// New opens the chain in db, bootstrapping it from the genesis transactions
// when it does not exist yet. Validators extend the default header and body
// validation.
func New(
	ctx context.Context,
	log zerolog.Logger,
	db *badger.DB,
	metrics Metrics,
	tracer module.Tracer,
	cfg Config,
	executor computer.TransactionExecutor,
	genesisTxs chain.Transactions,
	validators ...validation.Provider,
) (*Node, error) {
	n := &Node{
		log:     log.With().Str("component", "execution_node").Str("chain_id", string(cfg.ChainID)).Logger(),
		Storage: storagebadger.InitAll(metrics, db),
	}

	events, err := notifications.NewAsyncDistributor(log, cfg.EventQueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("could not create notification distributor: %w", err)
	}
	events.AddConsumer(notifications.NewLogConsumer(log))
	n.LogEvents = logevents.NewRegistry(log, n.Storage.TransactionResults)
	events.AddConsumer(n.LogEvents)
	n.Events = events

	var service computer.ExecutingService
	if cfg.ExecutionWorkers > 1 {
		n.parallel = computer.NewParallelExecutingService(log, executor, metrics, cfg.ExecutionWorkers, computer.BySender)
		service = n.parallel
	} else {
		service = computer.NewSequentialExecutingService(executor, metrics)
	}

	execState := state.NewExecutionState(log, db, n.Storage.StateSets, n.Storage.WorldState, n.Storage.TransactionResults)
	blockExecutor := computer.NewBlockExecutor(log, metrics, tracer, execState, service, events)

	bootstrapped, err := protocol.IsBootstrapped(db, cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("could not check whether chain is bootstrapped: %w", err)
	}
	if bootstrapped {
		n.State, err = protocol.OpenState(log, db, metrics, tracer, n.Storage, cfg.ChainID)
	} else {
		n.log.Info().Int("genesis_transactions", len(genesisTxs)).Msg("bootstrapping chain")
		n.State, err = ingestion.Bootstrap(ctx, log, db, metrics, tracer, n.Storage, execState, blockExecutor,
			chain.Genesis(cfg.ChainID), genesisTxs)
	}
	if err != nil {
		return nil, fmt.Errorf("could not initialize chain state: %w", err)
	}

	registry := validation.NewRegistry(log,
		validation.NewHeaderValidator(cfg.ChainID, n.Storage.Blocks, cfg.MaxFutureDrift),
		validation.NewBodyValidator(cfg.MaxTransactions),
	)
	for _, v := range validators {
		registry.Register(v)
	}

	n.Core = ingestion.NewCore(log, metrics, tracer, cfg.Ingestion, n.State, execState, n.Storage,
		blockExecutor, registry, events)
	n.Engine, err = ingestion.New(log, metrics, n.Core, cfg.Ingestion)
	if err != nil {
		return nil, fmt.Errorf("could not create ingestion engine: %w", err)
	}

	c := n.State.Chain()
	n.log.Info().
		Uint64("best_chain_height", c.BestChainHeight).
		Uint64("longest_chain_height", c.LongestChainHeight).
		Uint64("lib_height", c.LastIrreversibleBlockHeight).
		Msg("execution node initialized")
	return n, nil
}

// Start launches the notification worker and the ingestion engine.
func (n *Node) Start(ctx irrecoverable.SignalerContext) {
	n.Engine.Start(ctx)
}

func (n *Node) Ready() <-chan struct{} {
	return util.AllReady(n.Events, n.Engine)
}

// Done stops the engine before the notification worker so that the events of
// the last processed block are still delivered.
func (n *Node) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		<-n.Engine.Done()
		<-n.Events.Done()
		if n.parallel != nil {
			n.parallel.Stop()
		}
		close(done)
	}()
	return done
}
