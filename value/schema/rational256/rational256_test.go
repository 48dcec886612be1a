package rational256

import (
	"math/big"
	"testing"
)

func TestRoundTripReducesToLowestTerms(t *testing.T) {
	v, err := ToValue(big.NewInt(4), big.NewInt(8))
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	num, den, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if num.Cmp(big.NewInt(1)) != 0 || den.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected 1/2, got %v/%v", num, den)
	}
}

func TestNegativeDenominatorNormalized(t *testing.T) {
	v, err := ToValue(big.NewInt(3), big.NewInt(-6))
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	num, den, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if num.Sign() >= 0 {
		t.Fatalf("expected negative numerator after normalization, got %v", num)
	}
	if den.Sign() <= 0 {
		t.Fatalf("expected positive denominator, got %v", den)
	}
}

func TestZeroDenominatorRejected(t *testing.T) {
	if _, err := ToValue(big.NewInt(1), big.NewInt(0)); err == nil {
		t.Fatalf("expected error for zero denominator")
	}
}

func TestZeroNumeratorCanonicalizesDenominator(t *testing.T) {
	v, err := ToValue(big.NewInt(0), big.NewInt(7))
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	num, den, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if num.Sign() != 0 || den.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected 0/1, got %v/%v", num, den)
	}
}
