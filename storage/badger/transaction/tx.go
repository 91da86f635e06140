package transaction

import (
	"errors"
	"syscall"

	dbbadger "github.com/dgraph-io/badger/v2"
)

// Tx is a badger read-write transaction with callbacks that run once it
// committed. Stores use the callbacks to update their caches only with data
// that was actually persisted.
//
// Only the error returned by the outermost function decides about the commit.
// A nested function may register a callback and fail with an error its caller
// tolerates, the callback runs anyway.
type Tx struct {
	DBTxn     *dbbadger.Txn
	callbacks []func()
}

// OnSucceed registers a callback to run after the commit.
func (b *Tx) OnSucceed(callback func()) {
	b.callbacks = append(b.callbacks, callback)
}

// Update runs f in a new read-write transaction and commits it if f returns
// nil. Callbacks run in registration order after the commit.
func Update(db *dbbadger.DB, f func(*Tx) error) error {
	dbTxn := db.NewTransaction(true)
	defer dbTxn.Discard()

	tx := &Tx{DBTxn: dbTxn}
	err := f(tx)
	if err != nil {
		return err
	}
	err = dbTxn.Commit()
	if err != nil {
		return terminateOnFullDisk(err)
	}
	for _, callback := range tx.callbacks {
		callback()
	}
	return nil
}

// WithTx adapts a plain badger operation to a Tx function.
func WithTx(f func(*dbbadger.Txn) error) func(*Tx) error {
	return func(tx *Tx) error {
		return f(tx.DBTxn)
	}
}

// terminateOnFullDisk panics when the commit failed for lack of disk space;
// no further write can succeed and the deferred functions still run.
func terminateOnFullDisk(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		panic("disk full, terminating node...")
	}
	return err
}
