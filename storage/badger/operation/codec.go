package operation

import (
	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v4"

	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
)

// Stored values are msgpack encoded and snappy compressed. A value that cannot
// be encoded or decoded means a corrupted database or a programming error, both
// are exceptions.

func encodeEntity(entity interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(entity)
	if err != nil {
		return nil, irrecoverable.NewExceptionf("could not encode %T: %w", entity, err)
	}
	return snappy.Encode(nil, raw), nil
}

func decodeValue(val []byte, entity interface{}) error {
	raw, err := snappy.Decode(nil, val)
	if err != nil {
		return irrecoverable.NewExceptionf("could not decompress value for %T: %w", entity, err)
	}
	err = msgpack.Unmarshal(raw, entity)
	if err != nil {
		return irrecoverable.NewExceptionf("could not decode %T: %w", entity, err)
	}
	return nil
}
