package hash

import "golang.org/x/crypto/sha3"

// SHA3256 is the default Protocol implementation, computing SHA3-256
// digests via golang.org/x/crypto/sha3.
type SHA3256 struct{}

// Sum implements Protocol.
func (SHA3256) Sum(data []byte) [32]byte {
	h := sha3.New256()
	_, _ = h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Name implements Protocol.
func (SHA3256) Name() string { return "SHA3-256" }

// SchemaID lets SHA3256 double as the H type parameter of
// value/schema/hashschema.Hash[H] and value/schema/handle.Handle[H,S]
// without a separate marker type: H only needs to identify itself.
func (SHA3256) SchemaID() [16]byte { return [16]byte{'s', 'h', 'a', '3', '-', '2', '5', '6'} }
