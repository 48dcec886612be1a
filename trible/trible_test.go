package trible

import (
	"testing"

	"trible.dev/space/id"
)

func sampleTrible(t *testing.T) Trible {
	t.Helper()
	e := id.NewRandom()
	a := id.NewRandom()
	var v [32]byte
	for i := range v {
		v[i] = byte(i)
	}
	tr, err := New(e, a, v)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNewRejectsNilEntityAndAttribute(t *testing.T) {
	e := id.NewRandom()
	var zero id.Id
	var v [32]byte
	if _, err := New(zero, e, v); err == nil {
		t.Fatalf("expected error for nil entity")
	}
	if _, err := New(e, zero, v); err == nil {
		t.Fatalf("expected error for nil attribute")
	}
}

func TestAccessorsRoundTrip(t *testing.T) {
	e := id.NewRandom()
	a := id.NewRandom()
	var v [32]byte
	v[0] = 0xAB
	tr, err := New(e, a, v)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.E() != e {
		t.Fatalf("E() = %v, want %v", tr.E(), e)
	}
	if tr.A() != a {
		t.Fatalf("A() = %v, want %v", tr.A(), a)
	}
	if tr.V() != v {
		t.Fatalf("V() = %v, want %v", tr.V(), v)
	}
	if !tr.Valid() {
		t.Fatalf("expected Valid Trible")
	}
}

func TestOrderingsRoundTripPermuteDepermute(t *testing.T) {
	tr := sampleTrible(t)
	for _, o := range Orderings {
		key := o.Permute(tr)
		got := o.Depermute(key)
		if got != tr {
			t.Fatalf("ordering %s: depermute(permute(t)) = %v, want %v", o.Name, got, tr)
		}
		sum := o.Segments[0] + o.Segments[1] + o.Segments[2]
		if sum != Len {
			t.Fatalf("ordering %s: segments sum to %d, want %d", o.Name, sum, Len)
		}
	}
}

func TestEAVIsIdentity(t *testing.T) {
	tr := sampleTrible(t)
	if EAV.Permute(tr) != tr.Bytes() {
		t.Fatalf("EAV.Permute is not the identity permutation")
	}
}
