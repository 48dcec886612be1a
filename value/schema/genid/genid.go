// Package genid implements the GenId value schema: a Value whose first
// 16 bytes are zero and whose last 16 bytes are a non-nil Id.
package genid

import (
	"trible.dev/space/id"
	"trible.dev/space/value"
)

// GenId is the schema for a Value holding a generated Id: the first 16
// bytes are zero, the last 16 bytes are a non-nil Id.
type GenId struct{}

var genIDSchemaID = [16]byte{'g', 'e', 'n', 'i', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// SchemaID implements value.Schema.
func (GenId) SchemaID() [16]byte { return genIDSchemaID }

// ToValue encodes an Id as a Value[GenId]. It is total: every non-nil Id
// has a valid encoding.
func ToValue(i id.Id) (value.Value[GenId], error) {
	if i.IsNil() {
		return value.Value[GenId]{}, &value.Error{Code: value.Invalid, Msg: "genid: nil id"}
	}
	var raw [32]byte
	copy(raw[16:], i[:])
	return value.FromRawBytes[GenId](raw), nil
}

// FromValue decodes a Value[GenId] back into an Id, validating that the
// first 16 bytes are zero and the last 16 are non-nil.
func FromValue(v value.Value[GenId]) (id.Id, error) {
	raw := v.Bytes()
	var zero [16]byte
	if [16]byte(raw[:16]) != zero {
		return id.Nil, &value.Error{Code: value.Invalid, Msg: "genid: leading 16 bytes not zero"}
	}
	out, err := id.FromBytes(raw[16:])
	if err != nil {
		return id.Nil, &value.Error{Code: value.Invalid, Msg: "genid: " + err.Error()}
	}
	return out, nil
}
