// Package value implements Value<S>: a fixed 32-byte payload tagged at
// compile time by a schema marker type S.
package value

import "fmt"

// Schema is implemented by the zero-sized marker types living in
// value/schema. Each schema supplies a stable 16-byte schema Id used in
// attribute metadata.
//
// Go has no first-class notion of a trait with associated conversions;
// here a schema only needs to identify itself. The actual to/from-value
// conversions and validation predicates live as free functions in each
// schema's own file, operating on Value[ThatSchema] — the same shape as
// this package's ToValue/FromValue helpers, just schema-specific.
type Schema interface {
	// SchemaID returns the schema's stable 16-byte identifier.
	SchemaID() [16]byte
}

// Value is a 32-byte payload tagged by schema S. The zero value represents
// 32 zero bytes, which is a valid bit pattern for some schemas (e.g.
// Boolean's "false") and invalid for others (e.g. GenId, whose trailing 16
// bytes must be a non-nil id) — validity is schema-specific, not a
// property of Value itself.
type Value[S Schema] struct {
	bytes [32]byte
}

// Bytes returns the raw 32-byte payload.
func (v Value[S]) Bytes() [32]byte {
	return v.bytes
}

// SchemaID returns S's schema identifier.
func (v Value[S]) SchemaID() [16]byte {
	var zero S
	return zero.SchemaID()
}

// FromRawBytes wraps exactly 32 bytes as a Value[S] without any
// schema-specific validation. Schema packages call this from their own
// ToValue after validating; callers outside a schema package should
// prefer that schema's typed constructor instead of this function.
func FromRawBytes[S Schema](b [32]byte) Value[S] {
	return Value[S]{bytes: b}
}

// Error is the error type returned by schema validation/conversion
// failures: a stable ErrorCode paired with a message.
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
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// ErrorCode classifies value validation/conversion failures.
type ErrorCode string

const (
	// Invalid marks bytes that don't satisfy a schema's validation
	// predicate.
	Invalid ErrorCode = "INVALID"
	// OutOfRange marks a domain value that cannot be represented in 32
	// bytes under a schema's encoding (e.g. a string over 31 bytes for
	// ShortString, or an integer that overflows 256 bits).
	OutOfRange ErrorCode = "OUT_OF_RANGE"
)
