package query

// Constraint is the only contract a data source needs to implement to
// participate in a join. Implementations include trible-pattern
// constraints, Is (constant), Has (set-membership),
// Contains (PATCH membership), And (intersection), Or (union), Mask and
// Ignore (variable projection), and the regular-path constraint.
type Constraint interface {
	// Variables reports which variables this constraint touches.
	Variables() VariableSet
	// Estimate returns an upper-bound proposal count for v given the
	// current binding b, and false if no finite bound is available (the
	// join driver skips such variables when choosing what to bind next).
	Estimate(v Variable, b Binding) (count int, ok bool)
	// Propose appends candidate raw 32-byte values for v, consistent with
	// b, to out.
	Propose(v Variable, b Binding, out *[][32]byte)
	// Confirm filters *inout in place, retaining only values consistent
	// with this constraint given b.
	Confirm(v Variable, b Binding, inout *[][32]byte)
	// Influence reports which variables' bindings affect this
	// constraint's estimate/propose for v.
	Influence(v Variable) VariableSet
}

// filterInPlace keeps only the elements of *vals satisfying keep,
// preserving order. Shared by every Constraint's Confirm implementation.
func filterInPlace(vals *[][32]byte, keep func([32]byte) bool) {
	out := (*vals)[:0]
	for _, v := range *vals {
		if keep(v) {
			out = append(out, v)
		}
	}
	*vals = out
}
