// Package blob implements Blob<S>: an immutable, variable-length byte
// sequence tagged at compile time by a blob schema marker S.
package blob

import (
	"fmt"

	"trible.dev/space/hash"
)

// Schema is implemented by the zero-sized marker types living in
// blob/schema. Mirrors value.Schema's shape but for blob-typed payloads.
type Schema interface {
	// SchemaID returns the schema's stable 16-byte identifier, registered
	// in attribute metadata as attr_blob_schema.
	SchemaID() [16]byte
}

// Blob is an immutable byte sequence tagged by schema S. Unlike Value,
// which is a fixed 32 bytes, a Blob's length is schema- and
// content-dependent.
type Blob[S Schema] struct {
	bytes []byte
}

// FromRawBytes wraps b as a Blob[S] without schema-specific validation.
// Schema packages call this after validating; callers outside a schema
// package should prefer that schema's typed constructor.
func FromRawBytes[S Schema](b []byte) Blob[S] {
	// Defensive copy: a Blob is immutable by contract, so it must not
	// alias a caller-owned slice that might be mutated afterward.
	out := make([]byte, len(b))
	copy(out, b)
	return Blob[S]{bytes: out}
}

// Bytes returns the blob's raw payload. The returned slice must not be
// mutated by the caller; Blob's immutability contract depends on it.
func (b Blob[S]) Bytes() []byte {
	return b.bytes
}

// Len returns the blob's length in bytes.
func (b Blob[S]) Len() int {
	return len(b.bytes)
}

// Handle computes the content-addressed handle of b under hash protocol h:
// Value<Handle<H,S>> = H(bytes).
func Handle[S Schema](h hash.Protocol, b Blob[S]) [32]byte {
	return h.Sum(b.bytes)
}

// ErrorCode classifies blob validation failures.
type ErrorCode string

const (
	// Invalid marks bytes that don't satisfy a blob schema's validation
	// predicate (bad UTF-8, misaligned length, out-of-order records...).
	Invalid ErrorCode = "INVALID"
)

// Error is the error type returned by blob schema validation/decoding
// failures, pairing a stable ErrorCode with a human-readable message.
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
