// Package trible implements the 64-byte Trible — the atomic (entity,
// attribute, value) fact the rest of the engine indexes, joins, and
// persists.
package trible

import (
	"trible.dev/space/id"
)

// Len is the fixed byte width of a Trible: 16 (E) + 16 (A) + 32 (V).
const Len = 64

// Trible is the concatenation E || A || V. The zero value is not a valid
// Trible (E and A may never be all-zero); construct one with New.
type Trible [Len]byte

// ErrorCode classifies Trible construction failures.
type ErrorCode string

const (
	// NilEntity marks an attempt to build a Trible with an all-zero E field.
	NilEntity ErrorCode = "NIL_ENTITY"
	// NilAttribute marks an attempt to build a Trible with an all-zero A field.
	NilAttribute ErrorCode = "NIL_ATTRIBUTE"
)

// Error is the error type returned by New on an invalid (E,A,V) triple.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return e.Msg
}

// New builds a Trible from an entity Id, attribute Id, and a raw 32-byte
// value, rejecting all-zero E or A.
func New(e, a id.Id, v [32]byte) (Trible, error) {
	if e.IsNil() {
		return Trible{}, &Error{Code: NilEntity, Msg: "trible: entity id is nil"}
	}
	if a.IsNil() {
		return Trible{}, &Error{Code: NilAttribute, Msg: "trible: attribute id is nil"}
	}
	var t Trible
	copy(t[0:16], e[:])
	copy(t[16:32], a[:])
	copy(t[32:64], v[:])
	return t, nil
}

// E returns the entity Id.
func (t Trible) E() id.Id {
	var e id.Id
	copy(e[:], t[0:16])
	return e
}

// A returns the attribute Id.
func (t Trible) A() id.Id {
	var a id.Id
	copy(a[:], t[16:32])
	return a
}

// V returns the raw 32-byte value payload.
func (t Trible) V() [32]byte {
	var v [32]byte
	copy(v[:], t[32:64])
	return v
}

// Valid reports whether t satisfies the Trible invariant: non-nil E and A.
// A Trible built via New is always valid; Valid exists for Tribles
// reconstructed from raw bytes (e.g. decoded from a SimpleArchive blob).
func (t Trible) Valid() bool {
	return !t.E().IsNil() && !t.A().IsNil()
}

// Bytes returns the raw 64-byte encoding E||A||V.
func (t Trible) Bytes() [Len]byte {
	return [Len]byte(t)
}

// FromBytes reinterprets b as a Trible without re-validating E/A
// non-nilness; callers that didn't already validate should call Valid.
func FromBytes(b [Len]byte) Trible {
	return Trible(b)
}
