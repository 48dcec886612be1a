package query

import (
	"trible.dev/space/id"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
	"trible.dev/space/value"
	"trible.dev/space/value/schema/genid"
)

// Field is one position (E, A, or V) of a TriplePattern: either a query
// Variable or a constant 32-byte value.
type Field struct {
	isVar bool
	v     Variable
	val   [32]byte
}

// VarField makes a Field that binds to v.
func VarField(v Variable) Field {
	return Field{isVar: true, v: v}
}

// ConstID makes a constant E or A field from an Id, encoded the same way
// a GenId-schema value is: 16 zero bytes followed by the id, so id-typed
// variables and constants share one binding representation throughout
// the query engine. Panics on a nil id, a programmer error at
// query-construction time.
func ConstID(i id.Id) Field {
	v, err := genid.ToValue(i)
	if err != nil {
		panic(err)
	}
	return Field{val: v.Bytes()}
}

// ConstValue makes a constant V field from a raw 32-byte value.
func ConstValue[S value.Schema](v value.Value[S]) Field {
	return Field{val: v.Bytes()}
}

// TriplePattern is a single (E,A,V) pattern constraint against one
// TribleSet's indexes.
type TriplePattern struct {
	Set     tribleset.Set
	E, A, V Field
}

func (p TriplePattern) fields() [3]Field {
	return [3]Field{p.E, p.A, p.V}
}

func (p TriplePattern) Variables() VariableSet {
	var vs VariableSet
	for _, f := range p.fields() {
		if f.isVar {
			vs = vs.With(f.v)
		}
	}
	return vs
}

func (p TriplePattern) Influence(v Variable) VariableSet {
	var vs VariableSet
	for _, f := range p.fields() {
		if f.isVar && f.v != v {
			vs = vs.With(f.v)
		}
	}
	return vs
}

// fieldIndex reports which position (0=E,1=A,2=V) var occupies, or -1.
func (p TriplePattern) fieldIndex(target Variable) int {
	fs := p.fields()
	for i, f := range fs {
		if f.isVar && f.v == target {
			return i
		}
	}
	return -1
}

// resolve returns the bytes for field i (E/A fields return their
// trailing 16 bytes, V fields their full 32 bytes) given binding b, and
// whether that field is currently determined (constant, or a bound
// variable).
func (p TriplePattern) resolve(i int, b Binding) ([]byte, bool) {
	f := p.fields()[i]
	width := 32
	if i < 2 {
		width = 16
	}
	if !f.isVar {
		return f.val[32-width:], true
	}
	val, ok := b.Get(f.v)
	if !ok {
		return nil, false
	}
	return val[32-width:], true
}

// orderingFor finds a trible.Ordering whose fields strictly preceding
// target's position are all resolved under b, so a single PATCH prefix
// walk can enumerate target's candidates directly.
func (p TriplePattern) orderingFor(target Variable, b Binding) (trible.Ordering, tribleset.Ordering, []byte, bool) {
	pos := p.fieldIndex(target)
	if pos < 0 {
		return trible.Ordering{}, 0, nil, false
	}
	for idx, o := range trible.Orderings {
		prefix := make([]byte, 0, trible.Len)
		ok := true
		for _, fieldChar := range o.Name {
			fi := fieldCharIndex(byte(fieldChar))
			if fi == pos {
				break
			}
			fb, resolved := p.resolve(fi, b)
			if !resolved {
				ok = false
				break
			}
			prefix = append(prefix, fb...)
		}
		if ok {
			return o, tribleset.Ordering(idx), prefix, true
		}
	}
	return trible.Ordering{}, 0, nil, false
}

func fieldCharIndex(c byte) int {
	switch c {
	case 'E':
		return 0
	case 'A':
		return 1
	default:
		return 2
	}
}

func (p TriplePattern) Estimate(v Variable, b Binding) (int, bool) {
	_, ord, prefix, ok := p.orderingFor(v, b)
	if !ok {
		return 0, false
	}
	return p.Set.Index(ord).SegmentCount(append(prefix, 0)), true
}

func (p TriplePattern) fieldWidth(target Variable) int {
	if p.fieldIndex(target) < 2 {
		return 16
	}
	return 32
}

func (p TriplePattern) Propose(v Variable, b Binding, out *[][32]byte) {
	_, ord, prefix, ok := p.orderingFor(v, b)
	width := p.fieldWidth(v)
	if !ok {
		// No usable prefix: fall back to a full scan, filtering by
		// whatever fields are already determined. Correct, just not
		// using a PATCH prefix walk.
		p.scanPropose(v, b, out)
		return
	}
	tree := p.Set.Index(ord)
	seen := map[[32]byte]struct{}{}
	tree.Infixes(prefix, len(prefix), len(prefix)+width, func(infix []byte) {
		var val [32]byte
		copy(val[32-width:], infix)
		if _, dup := seen[val]; dup {
			return
		}
		seen[val] = struct{}{}
		*out = append(*out, val)
	})
}

func (p TriplePattern) scanPropose(v Variable, b Binding, out *[][32]byte) {
	seen := map[[32]byte]struct{}{}
	width := p.fieldWidth(v)
	p.Set.Each(func(t trible.Trible) bool {
		if !p.matchesKnown(t, v, b) {
			return true
		}
		val := valueAt(t, p.fieldIndex(v))
		var padded [32]byte
		copy(padded[32-width:], val)
		if _, dup := seen[padded]; !dup {
			seen[padded] = struct{}{}
			*out = append(*out, padded)
		}
		return true
	})
}

func valueAt(t trible.Trible, pos int) []byte {
	switch pos {
	case 0:
		e := t.E()
		return e[:]
	case 1:
		a := t.A()
		return a[:]
	default:
		v := t.V()
		return v[:]
	}
}

// matchesKnown reports whether t is consistent with every field of p
// other than v, given the already-determined fields in b.
func (p TriplePattern) matchesKnown(t trible.Trible, v Variable, b Binding) bool {
	for i, f := range p.fields() {
		if f.isVar && f.v == v {
			continue
		}
		want, resolved := p.resolve(i, b)
		if !resolved {
			continue
		}
		if string(valueAt(t, i)) != string(want) {
			return false
		}
	}
	return true
}

func (p TriplePattern) Confirm(v Variable, b Binding, inout *[][32]byte) {
	width := p.fieldWidth(v)
	_, ord, prefix, ok := p.orderingFor(v, b)
	filterInPlace(inout, func(candidate [32]byte) bool {
		if !ok {
			found := false
			p.Set.Each(func(t trible.Trible) bool {
				if p.matchesKnown(t, v, b) && string(valueAt(t, p.fieldIndex(v))) == string(candidate[32-width:]) {
					found = true
					return false
				}
				return true
			})
			return found
		}
		key := append(append([]byte(nil), prefix...), candidate[32-width:]...)
		return p.Set.Index(ord).HasPrefix(key)
	})
}
