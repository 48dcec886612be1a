package query

import (
	"trible.dev/space/id"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
	"trible.dev/space/value"
	"trible.dev/space/value/schema/genid"
)

// PathExpr is a small regular expression over attribute ids: AttrStep
// (one attribute edge), Concat (sequential attributes), Alt
// (alternation, `|`), Star (zero or more, `*`), Plus (one or more, `+`),
// and Opt (optional, `?`).
type PathExpr interface{ isPathExpr() }

type AttrStep struct{ Attribute id.Id }
type Concat struct{ Parts []PathExpr }
type Alt struct{ Options []PathExpr }
type Star struct{ Inner PathExpr }
type Plus struct{ Inner PathExpr }
type Opt struct{ Inner PathExpr }

func (AttrStep) isPathExpr() {}
func (Concat) isPathExpr()   {}
func (Alt) isPathExpr()      {}
func (Star) isPathExpr()     {}
func (Plus) isPathExpr()     {}
func (Opt) isPathExpr()      {}

// pathNFA is a Thompson-construction NFA over attribute-labeled edges:
// trans[state][attr] gives the set of states reachable by following a
// trible with that attribute, eps[state] gives epsilon-reachable states.
type pathNFA struct {
	trans  map[int]map[id.Id][]int
	eps    map[int][]int
	start  int
	accept int
}

type nfaFragment struct{ start, accept int }

type nfaBuilder struct {
	numStates int
	trans     map[int]map[id.Id][]int
	eps       map[int][]int
}

func (b *nfaBuilder) newState() int {
	s := b.numStates
	b.numStates++
	return s
}

func (b *nfaBuilder) addTrans(from int, attr id.Id, to int) {
	if b.trans[from] == nil {
		b.trans[from] = map[id.Id][]int{}
	}
	b.trans[from][attr] = append(b.trans[from][attr], to)
}

func (b *nfaBuilder) addEps(from, to int) {
	b.eps[from] = append(b.eps[from], to)
}

func compilePathExpr(b *nfaBuilder, expr PathExpr) nfaFragment {
	switch e := expr.(type) {
	case AttrStep:
		s1, s2 := b.newState(), b.newState()
		b.addTrans(s1, e.Attribute, s2)
		return nfaFragment{s1, s2}
	case Concat:
		if len(e.Parts) == 0 {
			s := b.newState()
			return nfaFragment{s, s}
		}
		first := compilePathExpr(b, e.Parts[0])
		start, prevAccept := first.start, first.accept
		for _, part := range e.Parts[1:] {
			frag := compilePathExpr(b, part)
			b.addEps(prevAccept, frag.start)
			prevAccept = frag.accept
		}
		return nfaFragment{start, prevAccept}
	case Alt:
		start, accept := b.newState(), b.newState()
		for _, opt := range e.Options {
			frag := compilePathExpr(b, opt)
			b.addEps(start, frag.start)
			b.addEps(frag.accept, accept)
		}
		return nfaFragment{start, accept}
	case Star:
		start, accept := b.newState(), b.newState()
		inner := compilePathExpr(b, e.Inner)
		b.addEps(start, inner.start)
		b.addEps(inner.accept, inner.start)
		b.addEps(inner.accept, accept)
		b.addEps(start, accept)
		return nfaFragment{start, accept}
	case Plus:
		start, accept := b.newState(), b.newState()
		inner := compilePathExpr(b, e.Inner)
		b.addEps(start, inner.start)
		b.addEps(inner.accept, inner.start)
		b.addEps(inner.accept, accept)
		return nfaFragment{start, accept}
	case Opt:
		start, accept := b.newState(), b.newState()
		inner := compilePathExpr(b, e.Inner)
		b.addEps(start, inner.start)
		b.addEps(inner.accept, accept)
		b.addEps(start, accept)
		return nfaFragment{start, accept}
	default:
		panic("query: unknown PathExpr")
	}
}

func compilePath(expr PathExpr) *pathNFA {
	b := &nfaBuilder{trans: map[int]map[id.Id][]int{}, eps: map[int][]int{}}
	frag := compilePathExpr(b, expr)
	return &pathNFA{trans: b.trans, eps: b.eps, start: frag.start, accept: frag.accept}
}

func (n *pathNFA) closure(states map[int]bool) map[int]bool {
	out := map[int]bool{}
	stack := make([]int, 0, len(states))
	for s := range states {
		out[s] = true
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.eps[s] {
			if !out[t] {
				out[t] = true
				stack = append(stack, t)
			}
		}
	}
	return out
}

// Path is the regular-path constraint: it enumerates (s,e) pairs
// connected, through set's entity graph, by a path matching Expr. Graph
// edges are (entity, attribute, entity) tribles whose value is a
// GenId-encoded entity reference; the search walks (node, NFA-state)
// pairs with a visited set, so a Star/Plus over a cyclic graph still
// terminates.
type Path struct {
	Set  tribleset.Set
	S, E Field

	nfa *pathNFA
}

// NewPath compiles expr and returns a ready-to-use Path constraint.
func NewPath(set tribleset.Set, s, e Field, expr PathExpr) Path {
	return Path{Set: set, S: s, E: e, nfa: compilePath(expr)}
}

func (p Path) Variables() VariableSet {
	var vs VariableSet
	if p.S.isVar {
		vs = vs.With(p.S.v)
	}
	if p.E.isVar {
		vs = vs.With(p.E.v)
	}
	return vs
}

// Estimate reports no finite bound: the regular-path search's cost
// depends on graph shape, not a PATCH prefix, so there is no cheap
// cardinality estimate to offer the join driver. The driver's
// lowest-index fallback (see find.go) still makes progress.
func (p Path) Estimate(v Variable, b Binding) (int, bool) { return 0, false }

func (p Path) resolveEndpoint(f Field, b Binding) (id.Id, bool) {
	if !f.isVar {
		return decodeFieldID(f.val)
	}
	raw, ok := b.Get(f.v)
	if !ok {
		return id.Nil, false
	}
	return decodeFieldID(raw)
}

func decodeFieldID(raw [32]byte) (id.Id, bool) {
	v, err := genid.FromValue(value.FromRawBytes[genid.GenId](raw))
	if err != nil {
		return id.Nil, false
	}
	return v, true
}

func idToValue(i id.Id) [32]byte {
	v, err := genid.ToValue(i)
	if err != nil {
		panic(err)
	}
	return v.Bytes()
}

// allNodes returns every distinct entity id appearing as a trible's
// entity or as a GenId-decodable value, i.e. every node of set's entity
// graph. Used when an endpoint is unbound and must range over the whole
// graph: a linear scan rather than a dedicated node index, a
// simplification acceptable since path queries are not on the hot path
// of join cardinality estimation.
func (p Path) allNodes() []id.Id {
	seen := map[id.Id]struct{}{}
	var out []id.Id
	add := func(i id.Id) {
		if _, dup := seen[i]; !dup {
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	p.Set.Each(func(t trible.Trible) bool {
		add(t.E())
		if tgt, ok := decodeFieldID(t.V()); ok {
			add(tgt)
		}
		return true
	})
	return out
}

// reachableFrom returns every node reachable from start via a path
// matching p's expression, keyed by the node id.
func (p Path) reachableFrom(start id.Id) map[id.Id]struct{} {
	result := map[id.Id]struct{}{}
	type pair struct {
		node  id.Id
		state int
	}
	visited := map[pair]bool{}
	var stack []pair
	for s := range p.nfa.closure(map[int]bool{p.nfa.start: true}) {
		stack = append(stack, pair{start, s})
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur.state == p.nfa.accept {
			result[cur.node] = struct{}{}
		}
		edges := p.nfa.trans[cur.state]
		if len(edges) == 0 {
			continue
		}
		p.Set.Each(func(t trible.Trible) bool {
			if t.E() != cur.node {
				return true
			}
			targets, ok := edges[t.A()]
			if !ok {
				return true
			}
			tgt, ok := decodeFieldID(t.V())
			if !ok {
				return true
			}
			var targetSet map[int]bool
			if len(targets) == 1 {
				targetSet = map[int]bool{targets[0]: true}
			} else {
				targetSet = make(map[int]bool, len(targets))
				for _, s := range targets {
					targetSet[s] = true
				}
			}
			for s := range p.nfa.closure(targetSet) {
				np := pair{tgt, s}
				if !visited[np] {
					stack = append(stack, np)
				}
			}
			return true
		})
	}
	return result
}

func (p Path) Propose(v Variable, b Binding, out *[][32]byte) {
	switch {
	case p.S.isVar && p.S.v == v:
		p.proposeS(b, out)
	case p.E.isVar && p.E.v == v:
		p.proposeE(b, out)
	}
}

func (p Path) proposeS(b Binding, out *[][32]byte) {
	if eID, ok := p.resolveEndpoint(p.E, b); ok {
		for _, s := range p.allNodes() {
			if _, reached := p.reachableFrom(s)[eID]; reached {
				*out = append(*out, idToValue(s))
			}
		}
		return
	}
	for _, s := range p.allNodes() {
		if len(p.reachableFrom(s)) > 0 {
			*out = append(*out, idToValue(s))
		}
	}
}

func (p Path) proposeE(b Binding, out *[][32]byte) {
	if sID, ok := p.resolveEndpoint(p.S, b); ok {
		for e := range p.reachableFrom(sID) {
			*out = append(*out, idToValue(e))
		}
		return
	}
	for _, s := range p.allNodes() {
		for e := range p.reachableFrom(s) {
			*out = append(*out, idToValue(e))
		}
	}
}

func (p Path) Confirm(v Variable, b Binding, inout *[][32]byte) {
	switch {
	case p.S.isVar && p.S.v == v:
		eID, eKnown := p.resolveEndpoint(p.E, b)
		filterInPlace(inout, func(cand [32]byte) bool {
			sID, ok := decodeFieldID(cand)
			if !ok {
				return false
			}
			reach := p.reachableFrom(sID)
			if eKnown {
				_, ok := reach[eID]
				return ok
			}
			return len(reach) > 0
		})
	case p.E.isVar && p.E.v == v:
		sID, sKnown := p.resolveEndpoint(p.S, b)
		filterInPlace(inout, func(cand [32]byte) bool {
			eID, ok := decodeFieldID(cand)
			if !ok {
				return false
			}
			if sKnown {
				_, ok := p.reachableFrom(sID)[eID]
				return ok
			}
			for _, s := range p.allNodes() {
				if _, ok := p.reachableFrom(s)[eID]; ok {
					return true
				}
			}
			return false
		})
	}
}

func (p Path) Influence(v Variable) VariableSet {
	return p.Variables().Without(v)
}
