package logging

import (
	"github.com/AElfProject/AElf-sub008/model/chain"
)

type identifiable interface {
	ID() chain.Identifier
}

// Entity returns the raw id bytes of an entity, for use with zerolog's Hex.
func Entity(entity identifiable) []byte {
	id := entity.ID()
	return id[:]
}

// ID returns the raw bytes of an identifier, for use with zerolog's Hex.
func ID(id chain.Identifier) []byte {
	return id[:]
}

// IDs returns the hex representation of every identifier.
func IDs(ids []chain.Identifier) []string {
	return chain.IdentifierList(ids).Strings()
}
