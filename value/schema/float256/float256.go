// Package float256 implements the 256-bit IEEE-like float value schema.
// The wire layout is a tagging byte (sign and special-value
// flags), a 4-byte big-endian signed exponent, and a 27-byte big-endian
// unsigned mantissa normalized to [2^215, 2^216) — i.e. frexp's [0.5, 1)
// fraction scaled by 2^216 — giving 216 bits of mantissa precision, more
// than double.Float64's 52 and comfortably inside a 256-bit budget.
package float256

import (
	"math/big"

	"trible.dev/space/value"
)

// Float256 is the schema marker type.
type Float256 struct{}

// SchemaID implements value.Schema.
func (Float256) SchemaID() [16]byte { return [16]byte{'f', '2', '5', '6'} }

const mantissaBits = 216

var twoToMantissaBits = new(big.Float).SetPrec(mantissaBits + 16).SetMantExp(big.NewFloat(1), mantissaBits)

const (
	flagNegative byte = 1 << 0
	flagZero     byte = 1 << 1
	flagInf      byte = 1 << 2
	flagNaN      byte = 1 << 3
)

// ToValue encodes f as a Value[Float256]. f is not retained.
func ToValue(f *big.Float) value.Value[Float256] {
	var raw [32]byte
	if f.IsInf() {
		raw[0] = flagInf
		if f.Sign() < 0 {
			raw[0] |= flagNegative
		}
		return value.FromRawBytes[Float256](raw)
	}
	if f.Sign() == 0 {
		raw[0] = flagZero
		return value.FromRawBytes[Float256](raw)
	}

	neg := f.Sign() < 0
	abs := new(big.Float).SetPrec(mantissaBits + 16).Abs(f)
	mant := new(big.Float).SetPrec(mantissaBits + 16)
	exp := abs.MantExp(mant) // abs = mant * 2^exp, mant in [0.5, 1)

	scaled := new(big.Float).SetPrec(mantissaBits + 16).Mul(mant, twoToMantissaBits)
	mantInt, _ := scaled.Int(nil)

	if neg {
		raw[0] |= flagNegative
	}
	var expBuf [4]byte
	putInt32BE(expBuf[:], int32(exp))
	copy(raw[1:5], expBuf[:])
	mb := mantInt.Bytes()
	copy(raw[32-len(mb):], mb)
	return value.FromRawBytes[Float256](raw)
}

// FromValue decodes a Value[Float256] back into a *big.Float with
// mantissaBits of precision.
func FromValue(v value.Value[Float256]) *big.Float {
	raw := v.Bytes()
	out := new(big.Float).SetPrec(mantissaBits + 16)
	switch {
	case raw[0]&flagNaN != 0:
		// big.Float has no NaN; callers that need NaN propagation should
		// check this case via IsNaN before calling FromValue.
		return out
	case raw[0]&flagZero != 0:
		return out.SetInt64(0)
	case raw[0]&flagInf != 0:
		sign := 1
		if raw[0]&flagNegative != 0 {
			sign = -1
		}
		return out.SetInf(sign < 0)
	}
	exp := int(int32BE(raw[1:5]))
	mantInt := new(big.Int).SetBytes(raw[5:])
	mant := new(big.Float).SetPrec(mantissaBits + 16).SetInt(mantInt)
	mant.Quo(mant, twoToMantissaBits)
	out.SetMantExp(mant, exp)
	if raw[0]&flagNegative != 0 {
		out.Neg(out)
	}
	return out
}

// IsNaN reports whether v encodes the NaN bit pattern.
func IsNaN(v value.Value[Float256]) bool {
	raw := v.Bytes()
	return raw[0]&flagNaN != 0
}

// NaN returns the canonical Value[Float256] NaN encoding.
func NaN() value.Value[Float256] {
	var raw [32]byte
	raw[0] = flagNaN
	return value.FromRawBytes[Float256](raw)
}

func putInt32BE(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u >> 24)
	b[1] = byte(u >> 16)
	b[2] = byte(u >> 8)
	b[3] = byte(u)
}

func int32BE(b []byte) int32 {
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int32(u)
}
