package operation

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
	"github.com/AElfProject/AElf-sub008/storage"
)

// The functions below are the building blocks of every operation of this
// package. Each returns a function to run inside a badger transaction. Badger
// failures other than a missing key are exceptions.

// insert stores the encoded entity under a new key.
// Expected errors during normal operations:
//   - storage.ErrAlreadyExists if the key is taken
func insert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		found, err := keyExists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return storage.ErrAlreadyExists
		}
		return setEncoded(tx, key, entity)
	}
}

// upsert stores the encoded entity, replacing any previous value.
func upsert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		return setEncoded(tx, key, entity)
	}
}

// update replaces the value of an existing key.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the key is not set
func update(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		found, err := keyExists(tx, key)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		return setEncoded(tx, key, entity)
	}
}

// remove deletes the key. Deleting a missing key is a no-op.
func remove(key []byte) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := tx.Delete(key)
		if err != nil {
			return irrecoverable.NewExceptionf("could not delete key %x: %w", key, err)
		}
		return nil
	}
}

// removeByPrefix deletes every key starting with the prefix.
func removeByPrefix(prefix []byte) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var keys [][]byte
		err := traverseKeys(prefix, func(suffix []byte) error {
			key := make([]byte, 0, len(prefix)+len(suffix))
			keys = append(keys, append(append(key, prefix...), suffix...))
			return nil
		})(tx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			err := remove(key)(tx)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// retrieve decodes the value of the key into entity, which must be a pointer.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the key is not set
func retrieve(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not load key %x: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return decodeValue(val, entity)
		})
	}
}

// exists reports whether the key is set.
func exists(key []byte, found *bool) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var err error
		*found, err = keyExists(tx, key)
		return err
	}
}

// iterationFunc is called once per visited key. It returns the decode target
// for the value and a handler called after decoding into it.
type iterationFunc func() (create func() interface{}, handle func() error)

// traverse decodes the values of all keys sharing the prefix, in key order.
func traverse(prefix []byte, iteration iterationFunc) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		if len(prefix) == 0 {
			return fmt.Errorf("prefix must not be empty")
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			create, handle := iteration()
			err := it.Item().Value(func(val []byte) error {
				err := decodeValue(val, create())
				if err != nil {
					return err
				}
				return handle()
			})
			if err != nil {
				return fmt.Errorf("could not process value: %w", err)
			}
		}
		return nil
	}
}

// traverseKeys calls handle with the key suffix following the prefix for every
// key sharing the prefix, in key order. Values are never loaded. The suffix is
// only valid during the call.
func traverseKeys(prefix []byte, handle func(suffix []byte) error) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		if len(prefix) == 0 {
			return fmt.Errorf("prefix must not be empty")
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			err := handle(key[len(prefix):])
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// lookupIDs collects the identifiers encoded in the key suffixes of an index.
func lookupIDs(prefix []byte, ids *[]chain.Identifier) func(*badger.Txn) error {
	*ids = make([]chain.Identifier, 0)
	return traverseKeys(prefix, func(suffix []byte) error {
		if len(suffix) < chain.IdentifierLen {
			return irrecoverable.NewExceptionf("malformed index key suffix of length %d", len(suffix))
		}
		var id chain.Identifier
		copy(id[:], suffix[:chain.IdentifierLen])
		*ids = append(*ids, id)
		return nil
	})
}

func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, irrecoverable.NewExceptionf("could not check key %x: %w", key, err)
	}
	return true, nil
}

func setEncoded(tx *badger.Txn, key []byte, entity interface{}) error {
	val, err := encodeEntity(entity)
	if err != nil {
		return err
	}
	err = tx.Set(key, val)
	if err != nil {
		return irrecoverable.NewExceptionf("could not store key %x: %w", key, err)
	}
	return nil
}
