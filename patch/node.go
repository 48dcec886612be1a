package patch

import "golang.org/x/crypto/sha3"

// hash128 is the branch/leaf content hash width: a 128-bit structural
// hash used to hash-cons nodes and detect identical subtrees. No SipHash
// implementation exists in the dependency set this module draws from, so
// leaves are hashed with SHA3-256 truncated to 16 bytes under a fixed
// domain-separation prefix — deterministic and built on a library this
// module already depends on (trible.dev/space/hash wraps the same
// primitive for Value<Hash<H>>).
type hash128 [16]byte

var leafDomainPrefix = [1]byte{0x4C} // 'L'

func leafHash(key []byte) hash128 {
	digest := sha3.Sum256(append(leafDomainPrefix[:], key...))
	var out hash128
	copy(out[:], digest[:16])
	return out
}

func xorHash(a, b hash128) hash128 {
	var out hash128
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

type kind uint8

const (
	kindLeaf kind = iota
	kindBranch
)

// node is a PATCH trie node. Empty is represented by a nil *node, never
// materialized as a struct of its own. Leaf and Branch share a struct
// rather than an interface so branches can
// hash-cons children by pointer identity after a structural hash match,
// without the overhead of repeated interface type switches.
type node[V any] struct {
	kind kind

	// Leaf fields.
	leafKey []byte
	leafVal V
	hasVal  bool

	// Branch fields.
	depth      int // index into the permuted key this branch discriminates on
	table      *childTable[V]
	childSet   byteBitset
	segmentSet byteBitset
	cnt        uint64

	h hash128
}

func newLeaf[V any](key []byte, val V, hasVal bool) *node[V] {
	return &node[V]{kind: kindLeaf, leafKey: key, leafVal: val, hasVal: hasVal, cnt: 1, h: leafHash(key)}
}

func (n *node[V]) count() uint64 {
	if n == nil {
		return 0
	}
	return n.cnt
}

func (n *node[V]) hashOf() hash128 {
	if n == nil {
		return hash128{}
	}
	return n.h
}

// keyAt returns the byte a branch's children are keyed by, for a full
// permuted key.
func keyAt(key []byte, depth int) byte {
	return key[depth]
}

// newBranchFromChildren rebuilds a branch's cached metadata (count,
// childSet, segmentSet, hash) from its table. segmentSet is set whenever
// depth is a segment boundary (cfg.isSegmentStart(depth)): it then mirrors
// childSet, tracking the distinct byte values immediately available at the
// start of a segment for segment_count's cardinality estimate.
func newBranchFromChildren[V any](depth int, table *childTable[V], isSegmentStart bool) *node[V] {
	var childSet, segmentSet byteBitset
	var cnt uint64
	var h hash128
	for _, s := range table.slots {
		if !s.used {
			continue
		}
		childSet.set(s.key)
		cnt += s.child.count()
		h = xorHash(h, s.child.hashOf())
	}
	if isSegmentStart {
		segmentSet = childSet
	}
	return &node[V]{
		kind:       kindBranch,
		depth:      depth,
		table:      table,
		childSet:   childSet,
		segmentSet: segmentSet,
		cnt:        cnt,
		h:          h,
	}
}
