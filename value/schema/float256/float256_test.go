package float256

import (
	"math/big"
	"testing"
)

func TestRoundTripFiniteValues(t *testing.T) {
	cases := []string{"0", "1", "-1", "0.5", "123.456", "-987654.321", "1e30", "-1e-30"}
	for _, s := range cases {
		f, _, err := big.ParseFloat(s, 10, mantissaBits, big.ToNearestEven)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", s, err)
		}
		v := ToValue(f)
		got := FromValue(v)
		if got.Cmp(f) != 0 {
			t.Fatalf("round trip mismatch for %q: got %s want %s", s, got.Text('g', 40), f.Text('g', 40))
		}
	}
}

func TestZeroRoundTrips(t *testing.T) {
	got := FromValue(ToValue(big.NewFloat(0)))
	if got.Sign() != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
}

func TestInfRoundTrips(t *testing.T) {
	posInf := new(big.Float).SetInf(false)
	got := FromValue(ToValue(posInf))
	if !got.IsInf() || got.Sign() <= 0 {
		t.Fatalf("expected +Inf, got %v", got)
	}
	negInf := new(big.Float).SetInf(true)
	got = FromValue(ToValue(negInf))
	if !got.IsInf() || got.Sign() >= 0 {
		t.Fatalf("expected -Inf, got %v", got)
	}
}

func TestNaNEncoding(t *testing.T) {
	v := NaN()
	if !IsNaN(v) {
		t.Fatalf("expected IsNaN to report true for NaN()")
	}
	zero := ToValue(big.NewFloat(0))
	if IsNaN(zero) {
		t.Fatalf("expected IsNaN to report false for zero")
	}
}
