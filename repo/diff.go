package repo

import "trible.dev/space/tribleset"

// Diff returns the symmetric difference between a and b: the tribles
// present in exactly one of the two sets. Used to report what a Merge
// actually changed, or to answer a pattern-changes-style delta query
// without re-deriving it from the underlying commit graph.
func Diff(a, b tribleset.Set) tribleset.Set {
	return a.Difference(b).Union(b.Difference(a))
}
