package protocol

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
	"github.com/AElfProject/AElf-sub008/state"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// State owns the chain record of one logical chain and every mutation of the
// block graph: linking blocks, recording execution results, discarding dead
// branches and advancing the last irreversible block.
//
// Mutations are serialised by the state itself and each one is committed in a
// single badger transaction together with the new chain record. Readers get
// immutable snapshots through Chain without taking any lock.
type State struct {
	mu        sync.Mutex
	log       zerolog.Logger
	db        *badger.DB
	metrics   module.ChainMetrics
	tracer    module.Tracer
	blocks    storage.Blocks
	links     storage.ChainBlockLinks
	chains    storage.Chains
	stateSets storage.BlockStateSets
	results   storage.TransactionResults
	chainID   chain.ChainID
	snapshot  *atomic.Pointer[chain.Chain]
}

// Bootstrap initialises the chain with an executed genesis block. The genesis
// block becomes best, longest and last irreversible block at once. Additional
// operations, such as initialising the world state, are committed in the same
// transaction.
func Bootstrap(
	log zerolog.Logger,
	db *badger.DB,
	metrics module.ChainMetrics,
	tracer module.Tracer,
	all *storage.All,
	genesis *chain.Block,
	ops ...func(*transaction.Tx) error,
) (*State, error) {
	chainID := genesis.Header.ChainID
	bootstrapped, err := IsBootstrapped(db, chainID)
	if err != nil {
		return nil, fmt.Errorf("could not check bootstrap status: %w", err)
	}
	if bootstrapped {
		return nil, fmt.Errorf("chain %s is already bootstrapped", chainID)
	}
	if genesis.Height() != 0 || genesis.ParentID() != chain.ZeroID {
		return nil, fmt.Errorf("genesis block must have height 0 and no parent (height=%d)", genesis.Height())
	}

	genesisID := genesis.ID()
	c := &chain.Chain{
		ID:                          chainID,
		GenesisBlockID:              genesisID,
		BestChainID:                 genesisID,
		BestChainHeight:             0,
		LongestChainID:              genesisID,
		LongestChainHeight:          0,
		LastIrreversibleBlockID:     genesisID,
		LastIrreversibleBlockHeight: 0,
		Branches:                    []chain.Branch{{TipID: genesisID, Height: 0}},
	}
	link := chain.NewChainBlockLink(genesis)
	link.ExecutionStatus = chain.ExecutionStatusSuccess

	err = transaction.Update(db, func(tx *transaction.Tx) error {
		err := all.Blocks.StoreTx(genesis)(tx)
		if err != nil {
			return fmt.Errorf("could not store genesis block: %w", err)
		}
		err = all.Links.StoreTx(link)(tx)
		if err != nil {
			return fmt.Errorf("could not link genesis block: %w", err)
		}
		err = all.Chains.StoreTx(c)(tx)
		if err != nil {
			return fmt.Errorf("could not store chain record: %w", err)
		}
		for _, op := range ops {
			err = op(tx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrapping chain %s failed: %w", chainID, err)
	}

	log.Info().
		Str("chain_id", string(chainID)).
		Hex("genesis_id", logging.ID(genesisID)).
		Msg("chain state bootstrapped")

	return newState(log, db, metrics, tracer, all, c), nil
}

// OpenState opens the state of an already bootstrapped chain.
// Expected errors during normal operations:
//   - state.ErrNotBootstrapped if there is no chain record for the id
func OpenState(
	log zerolog.Logger,
	db *badger.DB,
	metrics module.ChainMetrics,
	tracer module.Tracer,
	all *storage.All,
	chainID chain.ChainID,
) (*State, error) {
	c, err := all.Chains.ByID(chainID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("could not open chain %s: %w", chainID, state.ErrNotBootstrapped)
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve chain record: %w", err)
	}
	return newState(log, db, metrics, tracer, all, c), nil
}

// IsBootstrapped returns whether a chain record exists for the chain id.
func IsBootstrapped(db *badger.DB, chainID chain.ChainID) (bool, error) {
	var c chain.Chain
	err := db.View(operation.RetrieveChain(chainID, &c))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newState(
	log zerolog.Logger,
	db *badger.DB,
	metrics module.ChainMetrics,
	tracer module.Tracer,
	all *storage.All,
	c *chain.Chain,
) *State {
	s := &State{
		log:       log.With().Str("component", "chain_state").Str("chain_id", string(c.ID)).Logger(),
		db:        db,
		metrics:   metrics,
		tracer:    tracer,
		blocks:    all.Blocks,
		links:     all.Links,
		chains:    all.Chains,
		stateSets: all.StateSets,
		results:   all.TransactionResults,
		chainID:   c.ID,
		snapshot:  atomic.NewPointer[chain.Chain](nil),
	}
	s.publish(c)
	return s
}

// Chain returns the latest committed chain record. The returned value is
// shared between readers and must not be modified; use Copy to derive a
// mutable instance.
func (s *State) Chain() *chain.Chain {
	return s.snapshot.Load()
}

// Link returns the committed link of the given block.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the block is not linked
func (s *State) Link(blockID chain.Identifier) (*chain.ChainBlockLink, error) {
	return s.links.ByBlockID(blockID)
}

// mutate runs f on a private copy of the chain record inside one badger
// transaction. The record is persisted and published only if f succeeds and
// the transaction commits.
func (s *State) mutate(f func(tx *transaction.Tx, c *chain.Chain) (bool, error)) (*chain.Chain, error) {
	var updated *chain.Chain
	err := transaction.Update(s.db, func(tx *transaction.Tx) error {
		c := s.Chain().Copy()
		changed, err := f(tx, c)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		err = s.chains.StoreTx(c)(tx)
		if err != nil {
			return fmt.Errorf("could not store chain record: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated != nil {
		s.publish(updated)
	}
	return updated, nil
}

func (s *State) publish(c *chain.Chain) {
	s.snapshot.Store(c)
	s.metrics.ChainHeights(c.BestChainHeight, c.LongestChainHeight, c.LastIrreversibleBlockHeight)
	s.metrics.Branches(len(c.Branches), len(c.NotLinkedBlocks))
}

// linksInTx resolves links through the pending writes of tx.
func linksInTx(tx *badger.Txn) state.LinkLookup {
	return func(blockID chain.Identifier) (*chain.ChainBlockLink, error) {
		var link chain.ChainBlockLink
		err := operation.RetrieveChainBlockLink(blockID, &link)(tx)
		if err != nil {
			return nil, err
		}
		return &link, nil
	}
}

// childrenInTx returns the linked children of a block as seen by tx.
func childrenInTx(tx *badger.Txn, parentID chain.Identifier) ([]chain.Identifier, error) {
	var children []chain.Identifier
	err := operation.LookupChildren(parentID, &children)(tx)
	if err != nil {
		return nil, fmt.Errorf("could not look up children of %v: %w", parentID, err)
	}
	return children, nil
}

// removeBlockTx deletes everything stored for a block. Tombstones keep their
// link so that the failed block and its descendants are recognised later.
func (s *State) removeBlockTx(tx *transaction.Tx, link *chain.ChainBlockLink, keepLink bool) error {
	if !keepLink {
		err := s.links.RemoveTx(link)(tx)
		if err != nil {
			return fmt.Errorf("could not remove link %v: %w", link.BlockID, err)
		}
	}
	err := s.blocks.RemoveTx(link.BlockID)(tx)
	if err != nil {
		return fmt.Errorf("could not remove block %v: %w", link.BlockID, err)
	}
	err = s.stateSets.RemoveTx(link.BlockID)(tx)
	if err != nil {
		return fmt.Errorf("could not remove state set of %v: %w", link.BlockID, err)
	}
	err = s.results.RemoveByBlockIDTx(link.BlockID)(tx)
	if err != nil {
		return fmt.Errorf("could not remove transaction results of %v: %w", link.BlockID, err)
	}
	return nil
}
