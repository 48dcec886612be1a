package boolean

import "trible.dev/space/value"

// Boolean is the schema where all-zero bytes mean false, all-0xFF bytes
// mean true, and any other bit pattern is invalid.
type Boolean struct{}

var booleanSchemaID = [16]byte{'b', 'o', 'o', 'l', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// SchemaID implements value.Schema.
func (Boolean) SchemaID() [16]byte { return booleanSchemaID }

// ToValue encodes b as a Value[Boolean]. Total and infallible.
func ToValue(b bool) value.Value[Boolean] {
	var raw [32]byte
	if b {
		for i := range raw {
			raw[i] = 0xFF
		}
	}
	return value.FromRawBytes[Boolean](raw)
}

// FromValue decodes a Value[Boolean], rejecting any bit pattern that is
// neither all-zero nor all-0xFF.
func FromValue(v value.Value[Boolean]) (bool, error) {
	raw := v.Bytes()
	allZero, allOnes := true, true
	for _, b := range raw {
		if b != 0x00 {
			allZero = false
		}
		if b != 0xFF {
			allOnes = false
		}
	}
	switch {
	case allZero:
		return false, nil
	case allOnes:
		return true, nil
	default:
		return false, &value.Error{Code: value.Invalid, Msg: "boolean: neither all-zero nor all-0xFF"}
	}
}
