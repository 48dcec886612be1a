package query

// chooseVariable picks the next variable to bind from remaining: the one
// minimizing Estimate(v, b) among variables with a finite estimate,
// tie-broken by lowest index
// (VariableSet.Each already visits in ascending order, so the first
// minimum found wins ties). If no remaining variable has a finite
// estimate — an unconstrained trible-pattern field with no ordering
// offering a usable prefix — falls back to the lowest-indexed remaining
// variable; Propose/Confirm still bound the search correctly, just
// without a cardinality-based ordering for that step.
func chooseVariable(c Constraint, b Binding, remaining VariableSet) Variable {
	best := Variable(0)
	bestN := -1
	found := false
	remaining.Each(func(v Variable) bool {
		n, ok := c.Estimate(v, b)
		if !ok {
			return true
		}
		if !found || n < bestN {
			found, bestN, best = true, n, v
		}
		return true
	})
	if found {
		return best
	}
	remaining.Each(func(v Variable) bool {
		best = v
		return false
	})
	return best
}

// solve is the recursive worst-case-optimal join driver: repeatedly binds
// the cheapest remaining variable, confirms its proposals against every
// other constraint touching it, and recurses, until remaining is empty
// and emit sees a complete binding. Returns false once emit does, to
// stop the search early.
func solve(c Constraint, b Binding, remaining VariableSet, emit func(Binding) bool) bool {
	if remaining.IsEmpty() {
		return emit(b)
	}
	v := chooseVariable(c, b, remaining)
	var proposals [][32]byte
	c.Propose(v, b, &proposals)
	c.Confirm(v, b, &proposals)
	next := remaining.Without(v)
	for _, val := range proposals {
		if !solve(c, b.With(v, val), next, emit) {
			return false
		}
	}
	return true
}

// Solve enumerates every complete binding of root's variables
// (root.Variables()), calling emit for each. emit returning false stops
// the search early.
func Solve(root Constraint, emit func(Binding) bool) {
	solve(root, Binding{}, root.Variables(), emit)
}

// Find runs Solve and projects each resulting Binding onto vars, in
// order, calling emit with one tuple per result. emit returning false
// stops the search early.
func Find(root Constraint, vars []Variable, emit func(tuple [][32]byte) bool) {
	Solve(root, func(b Binding) bool {
		tuple := make([][32]byte, len(vars))
		for i, v := range vars {
			val, _ := b.Get(v)
			tuple[i] = val
		}
		return emit(tuple)
	})
}
