// Package rational256 implements the 256-bit canonical rational value
// schema: a 16-byte signed two's-complement numerator followed
// by a 16-byte unsigned denominator, with numerator/denominator coprime and
// denominator > 0.
package rational256

import (
	"math/big"

	"trible.dev/space/value"
)

// Rational256 is the schema marker type.
type Rational256 struct{}

// SchemaID implements value.Schema.
func (Rational256) SchemaID() [16]byte { return [16]byte{'r', 'a', 't', '2', '5', '6'} }

func twosComplementToBig128(be [16]byte) *big.Int {
	n := new(big.Int).SetBytes(be[:])
	if be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		n.Sub(n, mod)
	}
	return n
}

func bigToTwosComplement128(n *big.Int) ([16]byte, error) {
	var out [16]byte
	bound := new(big.Int).Lsh(big.NewInt(1), 127)
	if n.Cmp(bound) >= 0 || n.Cmp(new(big.Int).Neg(bound)) < 0 {
		return out, &value.Error{Code: value.OutOfRange, Msg: "rational256: numerator overflows 128 bits"}
	}
	m := new(big.Int).Set(n)
	if m.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		m.Add(m, mod)
	}
	b := m.Bytes()
	copy(out[16-len(b):], b)
	return out, nil
}

// ToValue reduces num/den to lowest terms and encodes it as a
// Value[Rational256]. den must be non-zero; the sign is normalized onto
// num so den is always stored positive.
func ToValue(num, den *big.Int) (value.Value[Rational256], error) {
	if den.Sign() == 0 {
		return value.Value[Rational256]{}, &value.Error{Code: value.Invalid, Msg: "rational256: zero denominator"}
	}
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	if n.Sign() == 0 {
		d.SetInt64(1)
	} else {
		g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), d)
		n.Quo(n, g)
		d.Quo(d, g)
	}
	if d.BitLen() > 128 {
		return value.Value[Rational256]{}, &value.Error{Code: value.OutOfRange, Msg: "rational256: denominator overflows 128 bits"}
	}

	var raw [32]byte
	numBytes, err := bigToTwosComplement128(n)
	if err != nil {
		return value.Value[Rational256]{}, err
	}
	copy(raw[:16], numBytes[:])
	denBytes := d.Bytes()
	copy(raw[32-len(denBytes):], denBytes)
	return value.FromRawBytes[Rational256](raw), nil
}

// FromValue decodes a Value[Rational256] into its (numerator, denominator)
// pair, validating that the denominator is non-zero and the pair is
// coprime.
func FromValue(v value.Value[Rational256]) (num, den *big.Int, err error) {
	raw := v.Bytes()
	var numBuf [16]byte
	copy(numBuf[:], raw[:16])
	num = twosComplementToBig128(numBuf)
	den = new(big.Int).SetBytes(raw[16:])
	if den.Sign() == 0 {
		return nil, nil, &value.Error{Code: value.Invalid, Msg: "rational256: zero denominator"}
	}
	if num.Sign() != 0 {
		g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), den)
		if g.Cmp(big.NewInt(1)) != 0 {
			return nil, nil, &value.Error{Code: value.Invalid, Msg: "rational256: numerator/denominator not coprime"}
		}
	}
	return num, den, nil
}
