package query

import "trible.dev/space/patch"

// Is constrains v to a single constant value.
type Is struct {
	V     Variable
	Value [32]byte
}

func (c Is) Variables() VariableSet { return VariableSetOf(c.V) }

func (c Is) Estimate(v Variable, b Binding) (int, bool) {
	if v != c.V {
		return 0, false
	}
	return 1, true
}

func (c Is) Propose(v Variable, b Binding, out *[][32]byte) {
	if v == c.V {
		*out = append(*out, c.Value)
	}
}

func (c Is) Confirm(v Variable, b Binding, inout *[][32]byte) {
	if v != c.V {
		return
	}
	filterInPlace(inout, func(x [32]byte) bool { return x == c.Value })
}

func (c Is) Influence(v Variable) VariableSet { return VariableSet(0) }

// Has constrains v to membership in a fixed, small set of values.
type Has struct {
	V      Variable
	Values [][32]byte
}

func (c Has) Variables() VariableSet { return VariableSetOf(c.V) }

func (c Has) Estimate(v Variable, b Binding) (int, bool) {
	if v != c.V {
		return 0, false
	}
	return len(c.Values), true
}

func (c Has) Propose(v Variable, b Binding, out *[][32]byte) {
	if v == c.V {
		*out = append(*out, c.Values...)
	}
}

func (c Has) Confirm(v Variable, b Binding, inout *[][32]byte) {
	if v != c.V {
		return
	}
	set := make(map[[32]byte]struct{}, len(c.Values))
	for _, x := range c.Values {
		set[x] = struct{}{}
	}
	filterInPlace(inout, func(x [32]byte) bool { _, ok := set[x]; return ok })
}

func (c Has) Influence(v Variable) VariableSet { return VariableSet(0) }

// Contains constrains v to membership in a PATCH of raw 32-byte keys: the
// PATCH-backed analogue of Has, usable directly against a value-schema
// index without materializing a slice.
type Contains struct {
	V    Variable
	Tree patch.PATCH[struct{}]
}

func (c Contains) Variables() VariableSet { return VariableSetOf(c.V) }

func (c Contains) Estimate(v Variable, b Binding) (int, bool) {
	if v != c.V {
		return 0, false
	}
	return c.Tree.Len(), true
}

func (c Contains) Propose(v Variable, b Binding, out *[][32]byte) {
	if v != c.V {
		return
	}
	c.Tree.IterOrdered(func(key []byte, _ struct{}) bool {
		var val [32]byte
		copy(val[:], key)
		*out = append(*out, val)
		return true
	})
}

func (c Contains) Confirm(v Variable, b Binding, inout *[][32]byte) {
	if v != c.V {
		return
	}
	filterInPlace(inout, func(x [32]byte) bool {
		_, ok := c.Tree.Get(x[:])
		return ok
	})
}

func (c Contains) Influence(v Variable) VariableSet { return VariableSet(0) }

// And is the intersection of its members: estimate is the minimum across
// members touching v, propose delegates to the cheapest such member, and
// confirm runs every other member touching v.
type And struct {
	Members []Constraint
}

func (c And) Variables() VariableSet {
	var vs VariableSet
	for _, m := range c.Members {
		vs = vs.Union(m.Variables())
	}
	return vs
}

func (c And) Estimate(v Variable, b Binding) (int, bool) {
	best := -1
	for _, m := range c.Members {
		if !m.Variables().Has(v) {
			continue
		}
		n, ok := m.Estimate(v, b)
		if !ok {
			continue
		}
		if best == -1 || n < best {
			best = n
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (c And) cheapest(v Variable, b Binding) Constraint {
	var best Constraint
	bestN := -1
	for _, m := range c.Members {
		if !m.Variables().Has(v) {
			continue
		}
		n, ok := m.Estimate(v, b)
		if !ok {
			continue
		}
		if bestN == -1 || n < bestN {
			bestN = n
			best = m
		}
	}
	return best
}

func (c And) Propose(v Variable, b Binding, out *[][32]byte) {
	if m := c.cheapest(v, b); m != nil {
		m.Propose(v, b, out)
	}
}

func (c And) Confirm(v Variable, b Binding, inout *[][32]byte) {
	// The cheapest member is tracked by index, as cheapest() picks it:
	// members such as TriplePattern hold slices and cannot be compared
	// with ==.
	skip, bestN := -1, -1
	for i, m := range c.Members {
		if !m.Variables().Has(v) {
			continue
		}
		if n, ok := m.Estimate(v, b); ok && (bestN == -1 || n < bestN) {
			skip, bestN = i, n
		}
	}
	for i, m := range c.Members {
		if i == skip || !m.Variables().Has(v) {
			continue
		}
		m.Confirm(v, b, inout)
	}
}

func (c And) Influence(v Variable) VariableSet {
	var vs VariableSet
	for _, m := range c.Members {
		if m.Variables().Has(v) {
			vs = vs.Union(m.Influence(v))
		}
	}
	return vs
}

// Or is the union of its members. Every member must constrain the same
// variable set.
type Or struct {
	Members []Constraint
}

func (c Or) Variables() VariableSet {
	if len(c.Members) == 0 {
		return 0
	}
	return c.Members[0].Variables()
}

func (c Or) Estimate(v Variable, b Binding) (int, bool) {
	sum := 0
	for _, m := range c.Members {
		n, ok := m.Estimate(v, b)
		if !ok {
			return 0, false
		}
		sum += n
	}
	return sum, true
}

func (c Or) Propose(v Variable, b Binding, out *[][32]byte) {
	seen := map[[32]byte]struct{}{}
	for _, m := range c.Members {
		var local [][32]byte
		m.Propose(v, b, &local)
		for _, x := range local {
			if _, dup := seen[x]; dup {
				continue
			}
			seen[x] = struct{}{}
			*out = append(*out, x)
		}
	}
}

func (c Or) Confirm(v Variable, b Binding, inout *[][32]byte) {
	// A member's Confirm may rely on its candidates coming from its own
	// Propose (And skips its cheapest member), so each member's accepted
	// values are its own proposals filtered by its own Confirm.
	survivors := map[[32]byte]struct{}{}
	for _, m := range c.Members {
		var local [][32]byte
		m.Propose(v, b, &local)
		m.Confirm(v, b, &local)
		for _, x := range local {
			survivors[x] = struct{}{}
		}
	}
	filterInPlace(inout, func(x [32]byte) bool { _, ok := survivors[x]; return ok })
}

func (c Or) Influence(v Variable) VariableSet {
	var vs VariableSet
	for _, m := range c.Members {
		vs = vs.Union(m.Influence(v))
	}
	return vs
}

// Mask hides Hidden variables from the outer join: they stay bound
// internally to Inner but are removed from the projected variable set.
type Mask struct {
	Inner  Constraint
	Hidden VariableSet
}

func (c Mask) Variables() VariableSet { return c.Inner.Variables().Difference(c.Hidden) }

func (c Mask) Estimate(v Variable, b Binding) (int, bool) { return c.Inner.Estimate(v, b) }

// Propose resolves v by running a nested join over Inner's own variable
// set (v plus every Hidden variable, minus whatever b already bound),
// collecting the distinct values v takes across every way of
// satisfying Inner: a Hidden variable's value is never exposed, but
// Inner still needs some assignment to it to justify each v.
func (c Mask) Propose(v Variable, b Binding, out *[][32]byte) {
	seen := map[[32]byte]struct{}{}
	remaining := c.Inner.Variables().Union(c.Hidden).Difference(b.Bound())
	solve(c.Inner, b, remaining, func(full Binding) bool {
		val, ok := full.Get(v)
		if ok {
			if _, dup := seen[val]; !dup {
				seen[val] = struct{}{}
				*out = append(*out, val)
			}
		}
		return true
	})
}

func (c Mask) Confirm(v Variable, b Binding, inout *[][32]byte) {
	var allowed [][32]byte
	c.Propose(v, b, &allowed)
	allow := make(map[[32]byte]struct{}, len(allowed))
	for _, x := range allowed {
		allow[x] = struct{}{}
	}
	filterInPlace(inout, func(x [32]byte) bool { _, ok := allow[x]; return ok })
}

func (c Mask) Influence(v Variable) VariableSet { return c.Inner.Influence(v).Difference(c.Hidden) }

// Ignore subtracts Ignored from the constraint's reported variable set so
// those variables neither leak to outer joins nor appear in results,
// without keeping them bound the way Mask does.
type Ignore struct {
	Inner   Constraint
	Ignored VariableSet
}

func (c Ignore) Variables() VariableSet { return c.Inner.Variables().Difference(c.Ignored) }

func (c Ignore) Estimate(v Variable, b Binding) (int, bool) {
	if c.Ignored.Has(v) {
		return 0, false
	}
	return c.Inner.Estimate(v, b)
}

func (c Ignore) Propose(v Variable, b Binding, out *[][32]byte) {
	if c.Ignored.Has(v) {
		return
	}
	c.Inner.Propose(v, b, out)
}

func (c Ignore) Confirm(v Variable, b Binding, inout *[][32]byte) {
	if c.Ignored.Has(v) {
		return
	}
	c.Inner.Confirm(v, b, inout)
}

func (c Ignore) Influence(v Variable) VariableSet {
	if c.Ignored.Has(v) {
		return 0
	}
	return c.Inner.Influence(v).Difference(c.Ignored)
}
