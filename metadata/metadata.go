// Package metadata implements the attribute-registration namespace: for
// each attribute Id, a fixed set of well-known attributes records that
// attribute's display name and the value/blob schema Ids it's declared
// under.
package metadata

import "trible.dev/space/id"

// The three well-known attribute ids every TribleSet's metadata namespace
// uses to describe other attributes, fixed constants matching
// original_source/src/metadata.rs's NS! namespace declaration.
var (
	AttrName        = mustID("2E26F8BA886495A8DF04ACF0ED3ACBD4")
	AttrValueSchema = mustID("213F89E3F49628A105B3830BD3A6612C")
	AttrBlobSchema  = mustID("02FAF947325161918C6D2E7D9DBA3485")
)

func mustID(hex string) id.Id {
	var out [16]byte
	for i := 0; i < 16; i++ {
		out[i] = hexByte(hex[i*2], hex[i*2+1])
	}
	v, err := id.FromBytes(out[:])
	if err != nil {
		panic(err)
	}
	return v
}

func hexByte(hi, lo byte) byte {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		panic("metadata: invalid hex digit")
	}
}

// Attribute describes one registered attribute: its display name and the
// schema(s) values stored under it must satisfy.
type Attribute struct {
	// Name is the attribute's human-readable identifier.
	Name string
	// ValueSchema is the 16-byte schema Id every Value under this
	// attribute must validate against.
	ValueSchema [16]byte
	// BlobSchema is the 16-byte schema Id any Handle under this
	// attribute's value schema must resolve to, if this attribute's
	// values are themselves content handles. The zero value means "not a
	// handle attribute".
	BlobSchema [16]byte
}

// Registry maps attribute Ids to their registered Attribute description.
// It is the runtime counterpart of the metadata namespace's tribles under
// AttrName/AttrValueSchema/AttrBlobSchema. It is filled only through
// Register; nothing in this module builds one from a TribleSet.
type Registry struct {
	attrs map[id.Id]Attribute
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{attrs: make(map[id.Id]Attribute)}
}

// Register records attr's description under id. A second Register call
// for the same id overwrites the prior description.
func (r *Registry) Register(attrID id.Id, attr Attribute) {
	r.attrs[attrID] = attr
}

// Lookup returns the Attribute registered under attrID, if any.
func (r *Registry) Lookup(attrID id.Id) (Attribute, bool) {
	a, ok := r.attrs[attrID]
	return a, ok
}
