// Package simplearchive implements the SimpleArchive blob schema: the
// canonical TribleSet serialization, a concatenation of 64-byte tribles
// sorted ascending by EAV byte lexicographic order.
package simplearchive

import (
	"bytes"

	"trible.dev/space/blob"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
)

// SimpleArchive is the schema marker type.
type SimpleArchive struct{}

// SchemaID implements blob.Schema.
func (SimpleArchive) SchemaID() [16]byte {
	return [16]byte{'s', 'i', 'm', 'p', 'l', 'e', 'a', 'r', 'c', 'h'}
}

// Pack serializes s as a Blob[SimpleArchive]: every trible in s, in EAV
// order, concatenated with no framing.
func Pack(s tribleset.Set) blob.Blob[SimpleArchive] {
	buf := make([]byte, 0, s.Len()*trible.Len)
	s.Each(func(t trible.Trible) bool {
		b := t.Bytes()
		buf = append(buf, b[:]...)
		return true
	})
	return blob.FromRawBytes[SimpleArchive](buf)
}

// Unpack validates and decodes b into a tribleset.Set: length a multiple of
// 64, no all-zero E or A field, no duplicate tribles, and strict ascending
// EAV order — redundant or out-of-order tribles are rejected rather than
// silently re-sorted.
func Unpack(b blob.Blob[SimpleArchive]) (tribleset.Set, error) {
	raw := b.Bytes()
	if len(raw)%trible.Len != 0 {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "simplearchive: length is not a multiple of 64"}
	}

	out := tribleset.New()
	var prev []byte
	for off := 0; off < len(raw); off += trible.Len {
		chunk := raw[off : off+trible.Len]
		var tb [trible.Len]byte
		copy(tb[:], chunk)
		t := trible.FromBytes(tb)
		if !t.Valid() {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "simplearchive: all-zero entity or attribute field"}
		}
		if prev != nil {
			switch bytes.Compare(prev, chunk) {
			case 0:
				return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "simplearchive: duplicate trible (canonicalization redundancy)"}
			case 1:
				return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "simplearchive: tribles out of ascending order (canonicalization ordering)"}
			}
		}
		prev = chunk
		out = out.Insert(t)
	}
	return out, nil
}
