// Package patch implements the PATCH (Persistent Adaptive Trie with
// Cuckoo-hashing and Hash-caching): a persistent, hash-consed prefix trie
// over fixed-length byte keys with an optional per-leaf value payload.
// It is the single data structure underlying every index in the system:
// TribleSet's six orderings are six PATCHes over the same permuted
// 64-byte key.
//
// Go has no const generics, so a PATCH<KEY_LEN, ORDERING, V> conceptually
// becomes a runtime Config (key length plus segment boundaries) carried
// alongside a PATCH[V] generic only over the leaf payload type. Ordering
// itself lives one level up, in the caller (trible.Ordering permutes a
// key's bytes before handing it to PATCH) — PATCH only ever sees
// already-permuted keys and is itself ordering-agnostic.
package patch

import "bytes"

// Config fixes a PATCH's key shape: total key length and the byte-length
// of each logical segment (for segment_count cardinality queries).
// Segment lengths must sum to KeyLen.
type Config struct {
	KeyLen      int
	SegmentLens []int
}

func (c Config) segmentBoundaries() []int {
	bounds := make([]int, 0, len(c.SegmentLens)+1)
	pos := 0
	for _, l := range c.SegmentLens {
		bounds = append(bounds, pos)
		pos += l
	}
	return bounds
}

func (c Config) isSegmentStart(depth int) bool {
	for _, b := range c.segmentBoundaries() {
		if b == depth {
			return true
		}
	}
	return false
}

// segmentStart returns the byte offset of the segment containing pos.
func (c Config) segmentStart(pos int) int {
	start := 0
	for _, b := range c.segmentBoundaries() {
		if b <= pos {
			start = b
		}
	}
	return start
}

// PATCH is a persistent set (or map, when V carries information) of
// fixed-length keys. The zero value is not usable; construct one with New.
type PATCH[V any] struct {
	cfg  Config
	root *node[V]
}

// New creates an empty PATCH under cfg.
func New[V any](cfg Config) PATCH[V] {
	return PATCH[V]{cfg: cfg}
}

func copyKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

// Insert returns a new PATCH sharing structure with p, with key (and val)
// added. Re-inserting an existing key is a no-op with respect to the
// stored value: insert is set-semantics, first writer wins.
func (p PATCH[V]) Insert(key []byte, val V) PATCH[V] {
	if len(key) != p.cfg.KeyLen {
		panic("patch: key length mismatch")
	}
	return PATCH[V]{cfg: p.cfg, root: insertNode(p.root, 0, p.cfg, key, val)}
}

func insertNode[V any](n *node[V], depth int, cfg Config, key []byte, val V) *node[V] {
	if n == nil {
		return newLeaf(copyKey(key), val, true)
	}
	if n.kind == kindLeaf {
		if bytes.Equal(n.leafKey, key) {
			return n
		}
		d := firstDiff(n.leafKey, key, depth)
		table := newChildTable[V](4)
		table = table.insert(n.leafKey[d], n)
		table = table.insert(key[d], newLeaf(copyKey(key), val, true))
		return newBranchFromChildren(d, table, cfg.isSegmentStart(d))
	}
	// Path compression skips bytes [depth, n.depth): every key below n
	// shares them, so any one leaf under n tells whether key does too.
	rep := n
	for rep.kind != kindLeaf {
		rep = rep.table.entries()[0].child
	}
	if d := firstDiff(rep.leafKey, key, depth); d < n.depth {
		table := newChildTable[V](4)
		table = table.insert(rep.leafKey[d], n)
		table = table.insert(key[d], newLeaf(copyKey(key), val, true))
		return newBranchFromChildren(d, table, cfg.isSegmentStart(d))
	}
	b := key[n.depth]
	child := n.table.get(b)
	newChild := insertNode(child, n.depth+1, cfg, key, val)
	newTable := n.table.insert(b, newChild)
	return newBranchFromChildren(n.depth, newTable, cfg.isSegmentStart(n.depth))
}

func firstDiff(a, b []byte, from int) int {
	for i := from; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return i
		}
	}
	// Equal keys reach here only if the caller already excluded that case.
	return len(a) - 1
}

// Get looks up key, reporting its stored value and whether it was present.
func (p PATCH[V]) Get(key []byte) (V, bool) {
	return getNode(p.root, key)
}

func getNode[V any](n *node[V], key []byte) (V, bool) {
	for n != nil {
		if n.kind == kindLeaf {
			if bytes.Equal(n.leafKey, key) {
				return n.leafVal, true
			}
			var zero V
			return zero, false
		}
		n = n.table.get(key[n.depth])
	}
	var zero V
	return zero, false
}

// Count reports the number of keys in p. O(1): cached at every branch.
func (p PATCH[V]) Count() uint64 {
	return p.root.count()
}

// Len is an alias for Count, returned as an int for Go collection idiom.
func (p PATCH[V]) Len() int {
	return int(p.root.count())
}

// Hash returns the root content hash identifying p's set of (key,value)
// pairs. Two PATCHes with equal Hash contain the same keys.
func (p PATCH[V]) Hash() [16]byte {
	return p.root.hashOf()
}

// Equal reports whether p and o contain the same set of keys (and, when V
// is comparable by the caller's own definition, the same values — PATCH
// itself only compares key sets via the content hash).
func (p PATCH[V]) Equal(o PATCH[V]) bool {
	return p.root.hashOf() == o.root.hashOf()
}

func iterateLeaves[V any](n *node[V], cb func(key []byte, val V)) {
	if n == nil {
		return
	}
	if n.kind == kindLeaf {
		cb(n.leafKey, n.leafVal)
		return
	}
	for _, s := range n.table.slots {
		if s.used {
			iterateLeaves(s.child, cb)
		}
	}
}

// IterOrdered calls f with every (key, value) pair in ascending
// lexicographic order of the permuted key, stopping early if f returns
// false.
func (p PATCH[V]) IterOrdered(f func(key []byte, val V) bool) {
	iterOrderedNode(p.root, f)
}

func iterOrderedNode[V any](n *node[V], f func(key []byte, val V) bool) bool {
	if n == nil {
		return true
	}
	if n.kind == kindLeaf {
		return f(n.leafKey, n.leafVal)
	}
	cont := true
	n.childSet.ascending(func(b byte) bool {
		cont = iterOrderedNode(n.table.get(b), f)
		return cont
	})
	return cont
}

// HasPrefix reports whether any stored key starts with prefix.
func (p PATCH[V]) HasPrefix(prefix []byte) bool {
	n := p.root
	for n != nil {
		if n.kind == kindLeaf {
			return bytes.HasPrefix(n.leafKey, prefix)
		}
		if n.depth >= len(prefix) {
			// Bytes skipped by path compression are checked against
			// one leaf under n; all keys below n share them.
			n = n.table.entries()[0].child
			continue
		}
		n = n.table.get(prefix[n.depth])
	}
	return false
}

func descendTo[V any](n *node[V], prefix []byte, targetDepth int) *node[V] {
	for n != nil {
		if n.kind == kindLeaf {
			if bytes.HasPrefix(n.leafKey, prefix[:targetDepth]) {
				return n
			}
			return nil
		}
		if n.depth >= targetDepth {
			// Bytes skipped by path compression are shared by every key
			// below n; one leaf shows whether they match the prefix.
			rep := n
			for rep.kind != kindLeaf {
				rep = rep.table.entries()[0].child
			}
			if !bytes.HasPrefix(rep.leafKey, prefix[:targetDepth]) {
				return nil
			}
			return n
		}
		n = n.table.get(prefix[n.depth])
	}
	return nil
}

// Infixes enumerates every stored key matching prefix[:startDepth],
// calling f with that key's [startDepth:endDepth] slice. Keys sharing an
// identical infix each produce their own call.
func (p PATCH[V]) Infixes(prefix []byte, startDepth, endDepth int, f func(infix []byte)) {
	n := descendTo(p.root, prefix, startDepth)
	iterOrderedNode(n, func(key []byte, _ V) bool {
		f(append([]byte(nil), key[startDepth:endDepth]...))
		return true
	})
}

// SegmentCount estimates the number of distinct values in the segment
// containing prefix's trailing byte position, used for join cardinality
// estimation. Since estimate() callers only need an upper bound, not an
// exact count, this implementation reports the distinct-first-byte
// population of the segment's starting branch rather than a full
// multi-byte segment cardinality, which would need to aggregate across a
// whole segment's width.
func (p PATCH[V]) SegmentCount(prefix []byte) int {
	if len(prefix) == 0 {
		return 0
	}
	segStart := p.cfg.segmentStart(len(prefix) - 1)
	n := p.root
	for n != nil {
		if n.kind == kindLeaf {
			if bytes.HasPrefix(n.leafKey, prefix) {
				return 1
			}
			return 0
		}
		if n.depth == segStart {
			return n.segmentSet.count()
		}
		if n.depth >= len(prefix) {
			return n.childSet.count()
		}
		n = n.table.get(prefix[n.depth])
	}
	return 0
}

// Union returns the structural union of p and o.
func (p PATCH[V]) Union(o PATCH[V]) PATCH[V] {
	return PATCH[V]{cfg: p.cfg, root: unionNode(p.root, o.root, p.cfg)}
}

// Intersection returns the structural intersection of p and o.
func (p PATCH[V]) Intersection(o PATCH[V]) PATCH[V] {
	return PATCH[V]{cfg: p.cfg, root: intersectNode(p.root, o.root, p.cfg)}
}

// Difference returns the keys of p not present in o.
func (p PATCH[V]) Difference(o PATCH[V]) PATCH[V] {
	return PATCH[V]{cfg: p.cfg, root: differenceNode(p.root, o.root, p.cfg)}
}

func unionNode[V any](a, b *node[V], cfg Config) *node[V] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.hashOf() == b.hashOf() {
		return a
	}
	if a.kind == kindLeaf {
		return insertNode(b, 0, cfg, a.leafKey, a.leafVal)
	}
	if b.kind == kindLeaf {
		return insertNode(a, 0, cfg, b.leafKey, b.leafVal)
	}
	// Equal depths line up only if both branches also share the bytes that
	// path compression skipped above that depth.
	sameShape := a.depth == b.depth
	if sameShape {
		ra, rb := a, b
		for ra.kind != kindLeaf {
			ra = ra.table.entries()[0].child
		}
		for rb.kind != kindLeaf {
			rb = rb.table.entries()[0].child
		}
		sameShape = bytes.Equal(ra.leafKey[:a.depth], rb.leafKey[:a.depth])
	}
	if sameShape {
		table := a.table
		for _, s := range b.table.slots {
			if !s.used {
				continue
			}
			existing := table.get(s.key)
			merged := unionNode(existing, s.child, cfg)
			table = table.insert(s.key, merged)
		}
		return newBranchFromChildren(a.depth, table, cfg.isSegmentStart(a.depth))
	}
	// Compressed branch shapes don't line up; merge by enumeration. Still
	// correct (reuses Insert's tested semantics), just skips hash-consed
	// sharing along this particular subtree.
	result := a
	iterateLeaves(b, func(k []byte, v V) {
		result = insertNode(result, 0, cfg, k, v)
	})
	return result
}

func intersectNode[V any](a, b *node[V], cfg Config) *node[V] {
	if a == nil || b == nil {
		return nil
	}
	if a.hashOf() == b.hashOf() {
		return a
	}
	if a.kind == kindLeaf {
		if _, ok := getNode(b, a.leafKey); ok {
			return a
		}
		return nil
	}
	if b.kind == kindLeaf {
		if _, ok := getNode(a, b.leafKey); ok {
			return b
		}
		return nil
	}
	if a.depth == b.depth {
		table := newChildTable[V](4)
		found := false
		for _, s := range a.table.slots {
			if !s.used {
				continue
			}
			bc := b.table.get(s.key)
			if bc == nil {
				continue
			}
			merged := intersectNode(s.child, bc, cfg)
			if merged == nil {
				continue
			}
			found = true
			table = table.insert(s.key, merged)
		}
		if !found {
			return nil
		}
		return collapseOrBuild(a.depth, table, cfg.isSegmentStart(a.depth))
	}
	var result *node[V]
	iterateLeaves(a, func(k []byte, v V) {
		if _, ok := getNode(b, k); ok {
			result = insertNode(result, 0, cfg, k, v)
		}
	})
	return result
}

func differenceNode[V any](a, b *node[V], cfg Config) *node[V] {
	if a == nil {
		return nil
	}
	if b == nil {
		return a
	}
	if a.hashOf() == b.hashOf() {
		return nil
	}
	if a.kind == kindLeaf {
		if _, ok := getNode(b, a.leafKey); ok {
			return nil
		}
		return a
	}
	if b.kind == kindLeaf {
		return removeNode(a, cfg, b.leafKey)
	}
	if a.depth == b.depth {
		table := newChildTable[V](4)
		found := false
		for _, s := range a.table.slots {
			if !s.used {
				continue
			}
			bc := b.table.get(s.key)
			var merged *node[V]
			if bc == nil {
				merged = s.child
			} else {
				merged = differenceNode(s.child, bc, cfg)
			}
			if merged == nil {
				continue
			}
			found = true
			table = table.insert(s.key, merged)
		}
		if !found {
			return nil
		}
		return collapseOrBuild(a.depth, table, cfg.isSegmentStart(a.depth))
	}
	result := a
	iterateLeaves(b, func(k []byte, _ V) {
		result = removeNode(result, cfg, k)
	})
	return result
}

func removeNode[V any](n *node[V], cfg Config, key []byte) *node[V] {
	if n == nil {
		return nil
	}
	if n.kind == kindLeaf {
		if bytes.Equal(n.leafKey, key) {
			return nil
		}
		return n
	}
	b := key[n.depth]
	child := n.table.get(b)
	if child == nil {
		return n
	}
	newChild := removeNode(child, cfg, key)
	if newChild == nil {
		return collapseOrBuild(n.depth, n.table.remove(b), cfg.isSegmentStart(n.depth))
	}
	return newBranchFromChildren(n.depth, n.table.insert(b, newChild), cfg.isSegmentStart(n.depth))
}

// collapseOrBuild keeps branches from ever holding a single child: a
// branch with one remaining entry degenerates into that entry's subtree
// directly, preserving the invariant that every materialized branch forks
// at least two ways.
func collapseOrBuild[V any](depth int, table *childTable[V], isSegmentStart bool) *node[V] {
	entries := table.entries()
	switch len(entries) {
	case 0:
		return nil
	case 1:
		return entries[0].child
	default:
		return newBranchFromChildren(depth, table, isSegmentStart)
	}
}
