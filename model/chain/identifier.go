package chain

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
	"golang.org/x/crypto/sha3"
)

// IdentifierLen is the length of an identifier in bytes.
const IdentifierLen = 32

// Identifier represents a 32-byte unique identifier for an entity.
type Identifier [IdentifierLen]byte

// ZeroID is the lowest value in the 32-byte ID space.
var ZeroID = Identifier{}

// String returns the hex string representation of the identifier.
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// Format handles formatting of id for different verbs. This is called when
// formatting an identifier with fmt.
func (id Identifier) Format(state fmt.State, verb rune) {
	switch verb {
	case 'x', 's', 'v':
		_, _ = state.Write([]byte(id.String()))
	default:
		_, _ = state.Write([]byte(fmt.Sprintf("%%!%c(chain.Identifier=%s)", verb, id)))
	}
}

// IsZero returns true if the identifier is the zero identifier.
func (id Identifier) IsZero() bool {
	return id == ZeroID
}

// HexStringToIdentifier converts a hex string to an identifier. The input
// must be 64 characters long and contain only valid hex characters.
func HexStringToIdentifier(hexString string) (Identifier, error) {
	var identifier Identifier
	i, err := hex.Decode(identifier[:], []byte(hexString))
	if err != nil {
		return identifier, err
	}
	if i != IdentifierLen {
		return identifier, fmt.Errorf("malformed input, expected %d bytes (%d characters), decoded %d", IdentifierLen, 2*IdentifierLen, i)
	}
	return identifier, nil
}

// HashToID hashes the concatenation of the given byte slices with SHA3-256.
func HashToID(data ...[]byte) Identifier {
	hasher := sha3.New256()
	for _, d := range data {
		_, _ = hasher.Write(d)
	}
	var id Identifier
	copy(id[:], hasher.Sum(nil))
	return id
}

// MakeID creates an ID from the hash of the canonical msgpack encoding of the
// given entity. The entity must be encodable, an encoding failure is a bug and
// panics.
func MakeID(entity interface{}) Identifier {
	data, err := msgpack.Marshal(entity)
	if err != nil {
		panic(fmt.Sprintf("could not encode entity for hashing: %v", err))
	}
	return HashToID(data)
}

// IdentifierList is a list of identifiers.
type IdentifierList []Identifier

// Contains returns whether the list contains the given identifier.
func (il IdentifierList) Contains(target Identifier) bool {
	for _, id := range il {
		if id == target {
			return true
		}
	}
	return false
}

// Lookup converts the identifier list into a set.
func (il IdentifierList) Lookup() map[Identifier]struct{} {
	lookup := make(map[Identifier]struct{}, len(il))
	for _, id := range il {
		lookup[id] = struct{}{}
	}
	return lookup
}

// Strings returns the hex representation of every identifier of the list.
func (il IdentifierList) Strings() []string {
	list := make([]string, 0, len(il))
	for _, id := range il {
		list = append(list, id.String())
	}
	return list
}
