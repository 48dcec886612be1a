package taiinterval

import (
	"math/big"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	iv := Interval{Start: big.NewInt(-1_000_000), End: big.NewInt(2_000_000)}
	v, err := ToValue(iv)
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	got := FromValue(v)
	if got.Start.Cmp(iv.Start) != 0 || got.End.Cmp(iv.End) != 0 {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, iv)
	}
}

func TestFromMillisRange(t *testing.T) {
	iv := FromMillisRange(1000, 2000)
	if iv.Start.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Fatalf("expected 1e9 ns, got %v", iv.Start)
	}
	if iv.End.Cmp(big.NewInt(2_000_000_000)) != 0 {
		t.Fatalf("expected 2e9 ns, got %v", iv.End)
	}
}
