// Package id implements the 128-bit non-nil identifiers used as entity and
// attribute positions throughout the trible data model.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Id is a 128-bit identifier. The all-zero value is reserved as "nil" and is
// never a valid Id returned from a constructor in this package.
type Id [16]byte

// Nil is the reserved all-zero pattern.
var Nil = Id{}

// IsNil reports whether id is the all-zero pattern.
func (i Id) IsNil() bool {
	return i == Nil
}

func (i Id) String() string {
	return hex.EncodeToString(i[:])
}

// FromBytes copies b (which must be exactly 16 bytes) into an Id and rejects
// the nil pattern.
func FromBytes(b []byte) (Id, error) {
	var out Id
	if len(b) != 16 {
		return out, &Error{Code: BadFormat, Msg: fmt.Sprintf("id: expected 16 bytes, got %d", len(b))}
	}
	copy(out[:], b)
	if out.IsNil() {
		return out, &Error{Code: IsNilErr, Msg: "id: nil id"}
	}
	return out, nil
}

// NewRandom mints a fresh random Id (a version-4 UUID's raw bytes).
func NewRandom() Id {
	u := uuid.New()
	var out Id
	copy(out[:], u[:])
	return out
}

// NewUfoid mints a time-prefixed Id: the first 8 bytes are a big-endian
// millisecond TAI timestamp, the remaining 8 bytes are random. Ufoids sort
// lexicographically by creation time, which keeps entity ids roughly
// insertion-ordered inside PATCH indexes that use the identity permutation.
func NewUfoid(nowMillisTAI uint64) Id {
	var out Id
	binary.BigEndian.PutUint64(out[:8], nowMillisTAI)
	if _, err := rand.Read(out[8:]); err != nil {
		panic(fmt.Sprintf("id: NewUfoid: %v", err))
	}
	return out
}

// NewCounter mints a deterministic Id from a monotonic counter and a
// process-chosen salt, useful for reproducible tests and fixtures. The
// counter occupies the first 8 bytes (big-endian) so ids from the same
// salt sort in counter order.
func NewCounter(counter uint64, salt [8]byte) Id {
	var out Id
	binary.BigEndian.PutUint64(out[:8], counter)
	copy(out[8:], salt[:])
	return out
}
