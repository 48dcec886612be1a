// Package tribleset implements TribleSet: a set of tribles maintained
// under all six index orderings simultaneously.
package tribleset

import (
	"trible.dev/space/patch"
	"trible.dev/space/trible"
)

var cfg = patch.Config{KeyLen: trible.Len, SegmentLens: []int{16, 16, 32}}

// index pairs a trible ordering with the PATCH keyed under it. The leaf
// payload is struct{}: membership alone is all a trible index needs to
// record.
type index struct {
	ordering trible.Ordering
	tree     patch.PATCH[struct{}]
}

func newIndex(o trible.Ordering) index {
	return index{ordering: o, tree: patch.New[struct{}](patch.Config{KeyLen: o.KeyLen(), SegmentLens: o.SegmentLens()})}
}

// Set is a content-addressed, immutable collection of tribles, indexed
// under all six (E,A,V) orderings at once. All six indexes always reflect
// the same logical set; only the set abstraction — not any one index — is
// meant to be observed from outside this package.
type Set struct {
	indexes [6]index
}

// New returns an empty Set.
func New() Set {
	var s Set
	for i, o := range trible.Orderings {
		s.indexes[i] = newIndex(o)
	}
	return s
}

// Insert returns a new Set sharing structure with s, with t added to all
// six indexes.
func (s Set) Insert(t trible.Trible) Set {
	var out Set
	for i, idx := range s.indexes {
		key := idx.ordering.Permute(t)
		out.indexes[i] = index{ordering: idx.ordering, tree: idx.tree.Insert(key[:], struct{}{})}
	}
	return out
}

// Union returns the structural union of s and o.
func (s Set) Union(o Set) Set {
	var out Set
	for i := range s.indexes {
		out.indexes[i] = index{
			ordering: s.indexes[i].ordering,
			tree:     s.indexes[i].tree.Union(o.indexes[i].tree),
		}
	}
	return out
}

// Intersection returns the structural intersection of s and o.
func (s Set) Intersection(o Set) Set {
	var out Set
	for i := range s.indexes {
		out.indexes[i] = index{
			ordering: s.indexes[i].ordering,
			tree:     s.indexes[i].tree.Intersection(o.indexes[i].tree),
		}
	}
	return out
}

// Difference returns the tribles in s not present in o.
func (s Set) Difference(o Set) Set {
	var out Set
	for i := range s.indexes {
		out.indexes[i] = index{
			ordering: s.indexes[i].ordering,
			tree:     s.indexes[i].tree.Difference(o.indexes[i].tree),
		}
	}
	return out
}

// Len reports the number of tribles in s. All six indexes agree by
// construction; Len reads the EAV index.
func (s Set) Len() int {
	return s.indexes[eavIndex].tree.Len()
}

// Has reports whether t is a member of s.
func (s Set) Has(t trible.Trible) bool {
	key := s.indexes[eavIndex].ordering.Permute(t)
	_, ok := s.indexes[eavIndex].tree.Get(key[:])
	return ok
}

// Hash returns the EAV index's root content hash, the set's canonical
// identifier.
func (s Set) Hash() [16]byte {
	return s.indexes[eavIndex].tree.Hash()
}

// Equal reports whether s and o contain the same tribles.
func (s Set) Equal(o Set) bool {
	return s.Hash() == o.Hash()
}

// Each calls f with every trible in s, in EAV order.
func (s Set) Each(f func(trible.Trible) bool) {
	s.indexes[eavIndex].tree.IterOrdered(func(key []byte, _ struct{}) bool {
		var k [trible.Len]byte
		copy(k[:], key)
		return f(s.indexes[eavIndex].ordering.Depermute(k))
	})
}

// Index exposes the PATCH backing a specific ordering for direct use by
// the query engine's trible-pattern constraints.
func (s Set) Index(o Ordering) patch.PATCH[struct{}] {
	return s.indexes[int(o)].tree
}

// Ordering selects one of a Set's six index orderings.
type Ordering int

const (
	EAV Ordering = iota
	EVA
	AEV
	AVE
	VEA
	VAE
)

const eavIndex = int(EAV)

// TriblesOrdering returns the trible.Ordering a Set index constant maps to.
func (o Ordering) TriblesOrdering() trible.Ordering {
	return trible.Orderings[int(o)]
}
