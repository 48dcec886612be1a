package hash

import "lukechampine.com/blake3"

// Blake3 is a pluggable Protocol adapter over lukechampine.com/blake3: a
// thin wrapper so callers can select it the same way they'd select
// SHA3256.
type Blake3 struct{}

// Sum implements Protocol.
func (Blake3) Sum(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// Name implements Protocol.
func (Blake3) Name() string { return "BLAKE3" }

// SchemaID lets Blake3 double as the H type parameter of
// value/schema/hashschema.Hash[H] and value/schema/handle.Handle[H,S].
func (Blake3) SchemaID() [16]byte { return [16]byte{'b', 'l', 'a', 'k', 'e', '3'} }
