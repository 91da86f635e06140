package common

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog/log"

	"github.com/AElfProject/AElf-sub008/module/metrics"
	"github.com/AElfProject/AElf-sub008/storage"
	storagebadger "github.com/AElfProject/AElf-sub008/storage/badger"
)

// InitStorage opens the badger database in the directory read-only.
func InitStorage(datadir string) (*badger.DB, error) {
	opts := badger.
		DefaultOptions(datadir).
		WithReadOnly(true).
		WithKeepL0InMemory(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database at %s: %w", datadir, err)
	}
	return db, nil
}

// InitStorages opens the database and the stores on top of it. Failures are
// fatal.
func InitStorages(datadir string) (*badger.DB, *storage.All) {
	db, err := InitStorage(datadir)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize storage")
	}
	return db, storagebadger.InitAll(metrics.NewNoopCollector(), db)
}
