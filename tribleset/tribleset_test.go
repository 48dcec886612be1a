package tribleset

import (
	"testing"

	"trible.dev/space/id"
	"trible.dev/space/trible"
)

func mustTrible(t *testing.T, e, a id.Id, v [32]byte) trible.Trible {
	t.Helper()
	tr, err := trible.New(e, a, v)
	if err != nil {
		t.Fatalf("trible.New: %v", err)
	}
	return tr
}

func TestInsertAndHas(t *testing.T) {
	e := id.NewRandom()
	a := id.NewRandom()
	var v [32]byte
	v[0] = 1
	tr := mustTrible(t, e, a, v)

	s := New().Insert(tr)
	if !s.Has(tr) {
		t.Fatalf("expected Has to report true after Insert")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestAllSixIndexesAgreeOnLen(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		var v [32]byte
		v[0] = byte(i)
		tr := mustTrible(t, id.NewRandom(), id.NewRandom(), v)
		s = s.Insert(tr)
	}
	for o := EAV; o <= VAE; o++ {
		if got := s.Index(o).Len(); got != s.Len() {
			t.Fatalf("index %d Len() = %d, want %d", o, got, s.Len())
		}
	}
}

func TestUnionIntersectionDifference(t *testing.T) {
	e, a := id.NewRandom(), id.NewRandom()
	var v1, v2 [32]byte
	v1[0], v2[0] = 1, 2
	t1 := mustTrible(t, e, a, v1)
	t2 := mustTrible(t, e, a, v2)

	s1 := New().Insert(t1)
	s2 := New().Insert(t2)

	u := s1.Union(s2)
	if u.Len() != 2 {
		t.Fatalf("Union Len() = %d, want 2", u.Len())
	}

	i := s1.Intersection(s2)
	if i.Len() != 0 {
		t.Fatalf("Intersection of disjoint sets Len() = %d, want 0", i.Len())
	}

	d := u.Difference(s1)
	if d.Len() != 1 || !d.Has(t2) {
		t.Fatalf("Difference should leave only t2")
	}
}

func TestEachVisitsEveryTrible(t *testing.T) {
	s := New()
	want := map[trible.Trible]bool{}
	for i := 0; i < 10; i++ {
		var v [32]byte
		v[0] = byte(i)
		tr := mustTrible(t, id.NewRandom(), id.NewRandom(), v)
		s = s.Insert(tr)
		want[tr] = true
	}
	got := map[trible.Trible]bool{}
	s.Each(func(tr trible.Trible) bool {
		got[tr] = true
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Each visited %d tribles, want %d", len(got), len(want))
	}
	for tr := range want {
		if !got[tr] {
			t.Fatalf("Each missed trible %v", tr)
		}
	}
}

func TestEqualIsInsertionOrderIndependent(t *testing.T) {
	e, a := id.NewRandom(), id.NewRandom()
	var v1, v2 [32]byte
	v1[0], v2[0] = 1, 2
	t1 := mustTrible(t, e, a, v1)
	t2 := mustTrible(t, e, a, v2)

	s1 := New().Insert(t1).Insert(t2)
	s2 := New().Insert(t2).Insert(t1)
	if !s1.Equal(s2) {
		t.Fatalf("expected insertion-order-independent equality")
	}
}
