// Package longstring implements the LongString blob schema: UTF-8 bytes
// with no framing.
package longstring

import (
	"unicode/utf8"

	"trible.dev/space/blob"
)

// LongString is the schema marker type.
type LongString struct{}

// SchemaID implements blob.Schema.
func (LongString) SchemaID() [16]byte { return [16]byte{'l', 'o', 'n', 'g', 's', 't', 'r'} }

// ToBlob encodes s as a Blob[LongString]. It fails with blob.Invalid if s
// is not valid UTF-8, since Go strings need not be UTF-8 but this schema
// requires it.
func ToBlob(s string) (blob.Blob[LongString], error) {
	if !utf8.ValidString(s) {
		return blob.Blob[LongString]{}, &blob.Error{Code: blob.Invalid, Msg: "longstring: not valid UTF-8"}
	}
	return blob.FromRawBytes[LongString]([]byte(s)), nil
}

// FromBlob decodes a Blob[LongString] back into a string, validating UTF-8.
func FromBlob(b blob.Blob[LongString]) (string, error) {
	raw := b.Bytes()
	if !utf8.ValidString(string(raw)) {
		return "", &blob.Error{Code: blob.Invalid, Msg: "longstring: not valid UTF-8"}
	}
	return string(raw), nil
}
