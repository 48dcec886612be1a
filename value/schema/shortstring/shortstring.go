package shortstring

import (
	"unicode/utf8"

	"trible.dev/space/value"
)

// ShortString is the schema for short UTF-8 strings: NUL-terminated, at
// most 31 bytes of content (byte 32 reserved for worst case since the
// terminator itself must fit), no interior NULs, and every byte after the
// terminator must be zero.
type ShortString struct{}

var shortStringSchemaID = [16]byte{'s', 'h', 'o', 'r', 't', 's', 't', 'r', 0, 0, 0, 0, 0, 0, 0, 0}

// SchemaID implements value.Schema.
func (ShortString) SchemaID() [16]byte { return shortStringSchemaID }

// ToValue encodes s as a Value[ShortString], failing with OutOfRange if s
// doesn't fit (more than 31 bytes, since one byte is reserved for the NUL
// terminator) and Invalid if s isn't valid UTF-8 or contains an interior
// NUL.
func ToValue(s string) (value.Value[ShortString], error) {
	if !utf8.ValidString(s) {
		return value.Value[ShortString]{}, &value.Error{Code: value.Invalid, Msg: "shortstring: not valid UTF-8"}
	}
	if len(s) > 31 {
		return value.Value[ShortString]{}, &value.Error{Code: value.OutOfRange, Msg: "shortstring: longer than 31 bytes"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return value.Value[ShortString]{}, &value.Error{Code: value.Invalid, Msg: "shortstring: interior NUL"}
		}
	}
	var raw [32]byte
	copy(raw[:], s)
	// raw[len(s)] is already the NUL terminator by zero-initialization; the
	// remaining bytes are zero padding.
	return value.FromRawBytes[ShortString](raw), nil
}

// FromValue decodes a Value[ShortString] back into a string, validating the
// terminator and trailing-zero-padding invariant.
func FromValue(v value.Value[ShortString]) (string, error) {
	raw := v.Bytes()
	n := -1
	for i := 0; i < 32; i++ {
		if raw[i] == 0 {
			n = i
			break
		}
	}
	if n == -1 {
		return "", &value.Error{Code: value.Invalid, Msg: "shortstring: missing NUL terminator"}
	}
	for i := n; i < 32; i++ {
		if raw[i] != 0 {
			return "", &value.Error{Code: value.Invalid, Msg: "shortstring: non-zero byte after terminator"}
		}
	}
	s := string(raw[:n])
	if !utf8.ValidString(s) {
		return "", &value.Error{Code: value.Invalid, Msg: "shortstring: not valid UTF-8"}
	}
	return s, nil
}
