// Package integer implements the signed/unsigned 256-bit integer value
// schemas: UintLE256, UintBE256, IntLE256, IntBE256. Byte order is never
// implicit: the LE and BE variants are separate schemas rather than one
// schema with a runtime endianness flag, so a caller's choice of byte
// order is always visible in the type.
package integer

import (
	"math/big"

	"github.com/holiman/uint256"
	"trible.dev/space/value"
)

// UintLE256 is the schema for an unsigned 256-bit integer stored
// little-endian.
type UintLE256 struct{}

// UintBE256 is the schema for an unsigned 256-bit integer stored
// big-endian.
type UintBE256 struct{}

// IntLE256 is the schema for a two's-complement signed 256-bit integer
// stored little-endian.
type IntLE256 struct{}

// IntBE256 is the schema for a two's-complement signed 256-bit integer
// stored big-endian.
type IntBE256 struct{}

func (UintLE256) SchemaID() [16]byte { return [16]byte{'u', '2', '5', '6', 'l', 'e'} }
func (UintBE256) SchemaID() [16]byte { return [16]byte{'u', '2', '5', '6', 'b', 'e'} }
func (IntLE256) SchemaID() [16]byte  { return [16]byte{'i', '2', '5', '6', 'l', 'e'} }
func (IntBE256) SchemaID() [16]byte  { return [16]byte{'i', '2', '5', '6', 'b', 'e'} }

func reverse32(b [32]byte) [32]byte {
	var out [32]byte
	for i := 0; i < 32; i++ {
		out[i] = b[31-i]
	}
	return out
}

// ToUintBE256 encodes u as a big-endian Value[UintBE256]. Total and
// infallible: uint256.Int always fits in 256 bits by construction.
func ToUintBE256(u *uint256.Int) value.Value[UintBE256] {
	return value.FromRawBytes[UintBE256](u.Bytes32())
}

// FromUintBE256 decodes a Value[UintBE256] back into a uint256.Int.
func FromUintBE256(v value.Value[UintBE256]) *uint256.Int {
	raw := v.Bytes()
	return new(uint256.Int).SetBytes(raw[:])
}

// ToUintLE256 encodes u as a little-endian Value[UintLE256].
func ToUintLE256(u *uint256.Int) value.Value[UintLE256] {
	return value.FromRawBytes[UintLE256](reverse32(u.Bytes32()))
}

// FromUintLE256 decodes a Value[UintLE256] back into a uint256.Int.
func FromUintLE256(v value.Value[UintLE256]) *uint256.Int {
	raw := reverse32(v.Bytes())
	return new(uint256.Int).SetBytes(raw[:])
}

// twosComplementToBig interprets 32 big-endian bytes as a two's-complement
// signed integer.
func twosComplementToBig(be [32]byte) *big.Int {
	n := new(big.Int).SetBytes(be[:])
	if be[0]&0x80 != 0 {
		// Negative: n - 2^256.
		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		n.Sub(n, mod)
	}
	return n
}

// bigToTwosComplement encodes a signed big.Int into 32 big-endian
// two's-complement bytes. It returns an error if n doesn't fit in 256
// bits.
func bigToTwosComplement(n *big.Int) ([32]byte, error) {
	var out [32]byte
	bound := new(big.Int).Lsh(big.NewInt(1), 255)
	if n.Cmp(bound) >= 0 || n.Cmp(new(big.Int).Neg(bound)) < 0 {
		return out, &value.Error{Code: value.OutOfRange, Msg: "integer: signed 256-bit overflow"}
	}
	m := new(big.Int).Set(n)
	if m.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		m.Add(m, mod)
	}
	b := m.Bytes()
	copy(out[32-len(b):], b)
	return out, nil
}

// ToIntBE256 encodes n as a big-endian two's-complement Value[IntBE256].
func ToIntBE256(n *big.Int) (value.Value[IntBE256], error) {
	raw, err := bigToTwosComplement(n)
	if err != nil {
		return value.Value[IntBE256]{}, err
	}
	return value.FromRawBytes[IntBE256](raw), nil
}

// FromIntBE256 decodes a Value[IntBE256] into a signed big.Int.
func FromIntBE256(v value.Value[IntBE256]) *big.Int {
	return twosComplementToBig(v.Bytes())
}

// ToIntLE256 encodes n as a little-endian two's-complement Value[IntLE256].
func ToIntLE256(n *big.Int) (value.Value[IntLE256], error) {
	be, err := bigToTwosComplement(n)
	if err != nil {
		return value.Value[IntLE256]{}, err
	}
	return value.FromRawBytes[IntLE256](reverse32(be)), nil
}

// FromIntLE256 decodes a Value[IntLE256] into a signed big.Int.
func FromIntLE256(v value.Value[IntLE256]) *big.Int {
	return twosComplementToBig(reverse32(v.Bytes()))
}
