// Package hash defines the pluggable content-hash protocol used to compute
// blob handles. Concrete hash implementations (Blake3 and friends) are
// swappable adapters — this package only fixes the narrow interface they
// must satisfy.
package hash

// Protocol is the narrow interface a content-hash function must satisfy to
// back a Handle[H,S]: a single-method capability injected into callers,
// not a framework.
type Protocol interface {
	// Sum returns the 32-byte content hash of data. Sum must be a pure
	// function of data: Sum(a) == Sum(b) iff the collision-resistance
	// assumption says a and b are (almost certainly) equal.
	Sum(data []byte) [32]byte
	// Name identifies the hash protocol for metadata/debugging purposes.
	Name() string
}
