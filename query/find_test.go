package query

import (
	"testing"

	"trible.dev/space/id"
	"trible.dev/space/tribleset"
	"trible.dev/space/value/schema/genid"
)

func TestFindTwoPatternJoin(t *testing.T) {
	// s -follows-> m -follows-> other, and confirm the join only yields
	// chains where the middle variable agrees.
	follows := id.NewRandom()
	s, m, other := id.NewRandom(), id.NewRandom(), id.NewRandom()

	mVal, err := valueFor(m)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}
	otherVal, err := valueFor(other)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}

	set := tribleset.New().
		Insert(mustTrible(t, s, follows, mVal)).
		Insert(mustTrible(t, m, follows, otherVal))

	vS, vM := Variable(0), Variable(1)
	first := TriplePattern{Set: set, E: ConstID(s), A: ConstID(follows), V: VarField(vM)}
	second := TriplePattern{Set: set, E: VarField(vM), A: ConstID(follows), V: VarField(vS)}
	root := And{Members: []Constraint{first, second}}

	var tuples [][][32]byte
	Find(root, []Variable{vM}, func(tuple [][32]byte) bool {
		tuples = append(tuples, append([][32]byte(nil), tuple...))
		return true
	})

	if len(tuples) != 1 {
		t.Fatalf("Find returned %d tuples, want 1: %v", len(tuples), tuples)
	}
	if tuples[0][0] != mVal {
		t.Fatalf("Find tuple[0] = %v, want m's value", tuples[0][0])
	}
}

func TestFindNoMatchesYieldsZeroTuples(t *testing.T) {
	e, a := id.NewRandom(), id.NewRandom()
	other := id.NewRandom()
	set := tribleset.New().Insert(mustTrible(t, e, a, valueOf(1)))

	v := Variable(0)
	p := TriplePattern{Set: set, E: ConstID(other), A: ConstID(a), V: VarField(v)}

	count := 0
	Find(p, []Variable{v}, func(tuple [][32]byte) bool {
		count++
		return true
	})
	if count != 0 {
		t.Fatalf("Find on unsatisfiable pattern returned %d tuples, want 0", count)
	}
}

func TestMaskHidesVariableButRequiresSatisfiability(t *testing.T) {
	// a knows b, b likes coffee; b knows c, c has no further edge.
	// Mask(?b, knows(?a,?b) and likes(?b, coffee)) proposing ?a should
	// only yield a, since b (not c) is the one who likes coffee.
	knows, likes := id.NewRandom(), id.NewRandom()
	coffee := id.NewRandom()
	a, b, c := id.NewRandom(), id.NewRandom(), id.NewRandom()

	coffeeVal, err := valueFor(coffee)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}
	bVal, err := valueFor(b)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}
	cVal, err := valueFor(c)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}

	set := tribleset.New().
		Insert(mustTrible(t, a, knows, bVal)).
		Insert(mustTrible(t, b, knows, cVal)).
		Insert(mustTrible(t, b, likes, coffeeVal))

	vA, vB := Variable(0), Variable(1)
	knowsPattern := TriplePattern{Set: set, E: VarField(vA), A: ConstID(knows), V: VarField(vB)}
	likesPattern := TriplePattern{Set: set, E: VarField(vB), A: ConstID(likes), V: ConstID(coffee)}
	masked := Mask{Inner: And{Members: []Constraint{knowsPattern, likesPattern}}, Hidden: VariableSetOf(vB)}

	if masked.Variables().Has(vB) {
		t.Fatalf("Mask should remove hidden variable from Variables()")
	}

	var proposals [][32]byte
	masked.Propose(vA, Binding{}, &proposals)
	got := sortedBytes(proposals)
	aVal, err := valueFor(a)
	if err != nil {
		t.Fatalf("valueFor: %v", err)
	}
	want := sortedBytes([][32]byte{aVal})
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Mask.Propose(vA) = %v, want [a] only (coffee-liker is b, not c)", proposals)
	}
}

func valueFor(i id.Id) ([32]byte, error) {
	v, err := genid.ToValue(i)
	if err != nil {
		return [32]byte{}, err
	}
	return v.Bytes(), nil
}
