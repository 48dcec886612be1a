package succinctarchive

import (
	"testing"

	"trible.dev/space/blob"
	"trible.dev/space/id"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
)

func mustTrible(t *testing.T, e, a id.Id, v byte) trible.Trible {
	t.Helper()
	var val [32]byte
	val[0] = v
	tr, err := trible.New(e, a, val)
	if err != nil {
		t.Fatalf("trible.New: %v", err)
	}
	return tr
}

func TestRoundTrip(t *testing.T) {
	s := tribleset.New()
	for i := 0; i < 20; i++ {
		s = s.Insert(mustTrible(t, id.NewRandom(), id.NewRandom(), byte(i)))
	}
	b := Pack(s)
	got, err := Unpack(b)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !got.Equal(s) {
		t.Fatalf("round trip produced a different set")
	}
}

func TestRoundTripSharedEntitiesAndAttributes(t *testing.T) {
	e1, e2 := id.NewRandom(), id.NewRandom()
	firstname, lastname := id.NewRandom(), id.NewRandom()

	s := tribleset.New().
		Insert(mustTrible(t, e1, firstname, 1)).
		Insert(mustTrible(t, e1, lastname, 2)).
		Insert(mustTrible(t, e2, firstname, 3)).
		Insert(mustTrible(t, e2, lastname, 4))

	got, err := Unpack(Pack(s))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !got.Equal(s) {
		t.Fatalf("round trip with shared E/A columns produced a different set")
	}
}

func TestRoundTripEmptySet(t *testing.T) {
	s := tribleset.New()
	got, err := Unpack(Pack(s))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !got.Equal(s) || got.Len() != 0 {
		t.Fatalf("round trip of empty set produced a non-empty set")
	}
}

func TestUnpackRejectsBadMagic(t *testing.T) {
	s := tribleset.New().Insert(mustTrible(t, id.NewRandom(), id.NewRandom(), 1))
	raw := append([]byte(nil), Pack(s).Bytes()...)
	raw[0] ^= 0xFF
	bad := blob.FromRawBytes[SuccinctArchive](raw)
	if _, err := Unpack(bad); err == nil {
		t.Fatalf("expected error for corrupted magic")
	}
}

func TestUnpackRejectsTruncatedPayload(t *testing.T) {
	s := tribleset.New().Insert(mustTrible(t, id.NewRandom(), id.NewRandom(), 1))
	raw := Pack(s).Bytes()
	bad := blob.FromRawBytes[SuccinctArchive](raw[:len(raw)-4])
	if _, err := Unpack(bad); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
