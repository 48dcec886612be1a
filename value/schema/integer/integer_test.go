package integer

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestUintBE256RoundTrip(t *testing.T) {
	cases := []*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(123456789),
		new(uint256.Int).SetAllOne(),
	}
	for _, u := range cases {
		got := FromUintBE256(ToUintBE256(u))
		if got.Cmp(u) != 0 {
			t.Fatalf("round trip mismatch: got %v want %v", got, u)
		}
	}
}

func TestUintLE256RoundTrip(t *testing.T) {
	u := uint256.NewInt(0xdeadbeef)
	got := FromUintLE256(ToUintLE256(u))
	if got.Cmp(u) != 0 {
		t.Fatalf("round trip mismatch: got %v want %v", got, u)
	}
}

func TestUintLEAndBEDisagreeInBytes(t *testing.T) {
	u := uint256.NewInt(0x0102)
	be := ToUintBE256(u).Bytes()
	le := ToUintLE256(u).Bytes()
	if be == le {
		t.Fatalf("expected LE/BE encodings to differ for a non-palindromic value")
	}
}

func TestIntBE256RoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		big.NewInt(-123456789),
		big.NewInt(123456789),
	}
	for _, n := range cases {
		v, err := ToIntBE256(n)
		if err != nil {
			t.Fatalf("ToIntBE256(%v): %v", n, err)
		}
		got := FromIntBE256(v)
		if got.Cmp(n) != 0 {
			t.Fatalf("round trip mismatch: got %v want %v", got, n)
		}
	}
}

func TestIntBE256RejectsOverflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 255)
	if _, err := ToIntBE256(tooBig); err == nil {
		t.Fatalf("expected OutOfRange error")
	}
}

func TestIntLE256RoundTrip(t *testing.T) {
	n := big.NewInt(-42)
	v, err := ToIntLE256(n)
	if err != nil {
		t.Fatalf("ToIntLE256: %v", err)
	}
	got := FromIntLE256(v)
	if got.Cmp(n) != 0 {
		t.Fatalf("round trip mismatch: got %v want %v", got, n)
	}
}
