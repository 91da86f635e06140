package state

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
	"github.com/AElfProject/AElf-sub008/storage"
	"github.com/AElfProject/AElf-sub008/storage/badger/operation"
	"github.com/AElfProject/AElf-sub008/storage/badger/transaction"
	"github.com/AElfProject/AElf-sub008/utils/logging"
)

// ErrStateNotFound indicates that the state after a block is not available,
// because the block was not executed or was pruned.
var ErrStateNotFound = errors.New("block state not found")

// ExecutionState maintains the execution view of the chain: the staged state
// sets of executed but not yet irreversible blocks on top of the irreversible
// world state.
type ExecutionState struct {
	log       zerolog.Logger
	db        *badger.DB
	stateSets storage.BlockStateSets
	world     storage.WorldState
	results   storage.TransactionResults
}

func NewExecutionState(
	log zerolog.Logger,
	db *badger.DB,
	stateSets storage.BlockStateSets,
	world storage.WorldState,
	results storage.TransactionResults,
) *ExecutionState {
	return &ExecutionState{
		log:       log.With().Str("component", "execution_state").Logger(),
		db:        db,
		stateSets: stateSets,
		world:     world,
		results:   results,
	}
}

// NewBlockView returns a view of the state after executing the given block.
// The zero id denotes the empty state before genesis and is only valid while
// the world state is not initialised.
//
// Expected errors during normal operations:
//   - ErrStateNotFound if the block was not executed or was pruned
func (s *ExecutionState) NewBlockView(blockID chain.Identifier) (*delta.View, error) {
	mergedID, mergedHeight, err := s.world.MergedBlock()
	if errors.Is(err, storage.ErrNotFound) {
		if blockID != chain.ZeroID {
			return nil, fmt.Errorf("world state is not initialised, no state after %v: %w", blockID, ErrStateNotFound)
		}
		return delta.NewView(delta.AlwaysEmptyGetValueFunc), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read merged block: %w", err)
	}

	// staged sets from the block down to the merged block, newest first
	var layers []*chain.BlockStateSet
	for id := blockID; id != mergedID; {
		set, err := s.stateSets.ByBlockID(id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("no state set for block %v: %w", id, ErrStateNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("could not retrieve state set of %v: %w", id, err)
		}
		if set.Height <= mergedHeight {
			return nil, fmt.Errorf("state of %v does not build on the merged block %v: %w", blockID, mergedID, ErrStateNotFound)
		}
		layers = append(layers, set)
		id = set.ParentID
	}

	return delta.NewView(func(key string) ([]byte, error) {
		for _, layer := range layers {
			value, staged := layer.Get(key)
			if staged {
				return value, nil
			}
		}
		value, err := s.world.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return value, err
	}), nil
}

// HasBlockState returns whether the state set of an executed block is staged.
func (s *ExecutionState) HasBlockState(blockID chain.Identifier) (bool, error) {
	return s.stateSets.Exists(blockID)
}

// SaveBlockState stages the state set of an executed block together with its
// transaction results.
func (s *ExecutionState) SaveBlockState(set *chain.BlockStateSet, results []*chain.TransactionResult) error {
	err := operation.RetryOnConflictTx(s.db, transaction.Update, func(tx *transaction.Tx) error {
		err := s.stateSets.StoreTx(set)(tx)
		if err != nil {
			return fmt.Errorf("could not store state set: %w", err)
		}
		err = s.results.StoreTx(set.BlockID, results)(tx)
		if err != nil {
			return fmt.Errorf("could not store transaction results: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not save state of block %v: %w", set.BlockID, err)
	}
	return nil
}

// BootstrapTx initialises the world state with the state set of the genesis
// block and stores the genesis transaction results.
func (s *ExecutionState) BootstrapTx(set *chain.BlockStateSet, results []*chain.TransactionResult) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		err := s.world.ApplyTx(set)(tx)
		if err != nil {
			return fmt.Errorf("could not initialise world state: %w", err)
		}
		err = s.results.StoreTx(set.BlockID, results)(tx)
		if err != nil {
			return fmt.Errorf("could not store genesis transaction results: %w", err)
		}
		return nil
	}
}

// MergeBlockStatesTx merges the staged state sets of the given irreversible
// blocks into the world state, in order, and deletes them. It is meant to run
// in the transaction advancing the last irreversible block.
//
// No errors are expected during normal operations. A missing state set of a
// block that was not merged yet is an exception.
func (s *ExecutionState) MergeBlockStatesTx(irreversible []*chain.ChainBlockLink) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		var mergedID chain.Identifier
		var mergedHeight uint64
		err := operation.RetrieveWorldStateMerged(&mergedID, &mergedHeight)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not read merged block: %w", err)
		}

		for _, link := range irreversible {
			if link.Height <= mergedHeight {
				continue
			}
			set := chain.NewBlockStateSet()
			err := operation.RetrieveBlockStateSet(link.BlockID, set)(tx.DBTxn)
			if errors.Is(err, storage.ErrNotFound) {
				return irrecoverable.NewExceptionf("irreversible block %v at height %d has no state set", link.BlockID, link.Height)
			}
			if err != nil {
				return fmt.Errorf("could not retrieve state set of %v: %w", link.BlockID, err)
			}
			if set.ParentID != mergedID {
				return irrecoverable.NewExceptionf("state set of %v does not extend the merged block %v", link.BlockID, mergedID)
			}

			err = s.world.ApplyTx(set)(tx)
			if err != nil {
				return fmt.Errorf("could not merge state set of %v: %w", link.BlockID, err)
			}
			err = s.stateSets.RemoveTx(link.BlockID)(tx)
			if err != nil {
				return fmt.Errorf("could not remove merged state set of %v: %w", link.BlockID, err)
			}
			mergedID = link.BlockID
			mergedHeight = link.Height

			s.log.Debug().
				Hex("block_id", logging.ID(link.BlockID)).
				Uint64("height", link.Height).
				Int("changes", len(set.Changes)).
				Int("deletes", len(set.Deletes)).
				Msg("block state merged into world state")
		}
		return nil
	}
}
