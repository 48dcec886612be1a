package query

import (
	"testing"

	"trible.dev/space/id"
	"trible.dev/space/tribleset"
	"trible.dev/space/value"
	"trible.dev/space/value/schema/genid"
	"trible.dev/space/value/schema/shortstring"
)

func decodeShortString(t *testing.T, raw [32]byte) string {
	t.Helper()
	s, err := shortstring.FromValue(value.FromRawBytes[shortstring.ShortString](raw))
	if err != nil {
		t.Fatalf("shortstring.FromValue: %v", err)
	}
	return s
}

func mustShortString(t *testing.T, s string) [32]byte {
	t.Helper()
	v, err := shortstring.ToValue(s)
	if err != nil {
		t.Fatalf("shortstring.ToValue(%q): %v", s, err)
	}
	return v.Bytes()
}

func TestPatternFindsSimpleRoundTrip(t *testing.T) {
	firstname := id.NewRandom()
	e1 := id.NewRandom()
	set := tribleset.New().Insert(mustTrible(t, e1, firstname, mustShortString(t, "Frank")))

	vN := Variable(0)
	root := Pattern(set, []EntityPattern{
		{Entity: ConstID(e1), Attributes: []AttributePattern{{Attribute: firstname, Value: VarField(vN)}}},
	})

	var got []string
	Find(root, []Variable{vN}, func(tuple [][32]byte) bool {
		got = append(got, decodeShortString(t, tuple[0]))
		return true
	})

	if len(got) != 1 || got[0] != "Frank" {
		t.Fatalf("Find(Pattern(...)) = %v, want [Frank]", got)
	}
}

func TestPatternChangesOnlyReportsDeltaDrivenResults(t *testing.T) {
	firstname, lastname, title, author := id.NewRandom(), id.NewRandom(), id.NewRandom(), id.NewRandom()
	e1, e2 := id.NewRandom(), id.NewRandom()

	base := tribleset.New().
		Insert(mustTrible(t, e1, firstname, mustShortString(t, "William"))).
		Insert(mustTrible(t, e1, lastname, mustShortString(t, "Shakespeare")))

	e1Val, err := genid.ToValue(e1)
	if err != nil {
		t.Fatalf("genid.ToValue: %v", err)
	}
	addition := tribleset.New().
		Insert(mustTrible(t, e2, title, mustShortString(t, "Hamlet"))).
		Insert(mustTrible(t, e2, author, e1Val.Bytes()))

	updated := base.Union(addition)
	delta := updated.Difference(base)

	vE1, vE2, vTitle := Variable(0), Variable(1), Variable(2)
	entities := []EntityPattern{
		{Entity: VarField(vE2), Attributes: []AttributePattern{
			{Attribute: title, Value: VarField(vTitle)},
			{Attribute: author, Value: VarField(vE1)},
		}},
	}

	var tuples [][3][32]byte
	root := PatternChanges(updated, delta, entities)
	Find(root, []Variable{vE1, vE2, vTitle}, func(tuple [][32]byte) bool {
		var t3 [3][32]byte
		copy(t3[:], tuple)
		tuples = append(tuples, t3)
		return true
	})

	if len(tuples) != 1 {
		t.Fatalf("PatternChanges with non-empty delta returned %d tuples, want 1: %v", len(tuples), tuples)
	}
	if title0 := decodeShortString(t, tuples[0][2]); title0 != "Hamlet" {
		t.Fatalf("PatternChanges title = %q, want Hamlet", title0)
	}

	emptyDelta := tribleset.New()
	count := 0
	Find(PatternChanges(updated, emptyDelta, entities), []Variable{vE1, vE2, vTitle}, func(tuple [][32]byte) bool {
		count++
		return true
	})
	if count != 0 {
		t.Fatalf("PatternChanges with empty delta returned %d tuples, want 0", count)
	}
}
