// Package taiinterval implements the NsTAIInterval value schema: two
// little-endian i128 nanosecond counts, start and end.
package taiinterval

import (
	"math/big"

	"trible.dev/space/value"
)

// TAIInterval is the schema marker type.
type TAIInterval struct{}

// SchemaID implements value.Schema.
func (TAIInterval) SchemaID() [16]byte { return [16]byte{'t', 'a', 'i', 'i', 'v', 'l'} }

// Interval is the decoded domain type: a half-open [Start, End) range of
// TAI nanosecond counts.
type Interval struct {
	Start *big.Int
	End   *big.Int
}

func putI128LE(b []byte, n *big.Int) error {
	bound := new(big.Int).Lsh(big.NewInt(1), 127)
	if n.Cmp(bound) >= 0 || n.Cmp(new(big.Int).Neg(bound)) < 0 {
		return &value.Error{Code: value.OutOfRange, Msg: "taiinterval: nanosecond count overflows 128 bits"}
	}
	m := new(big.Int).Set(n)
	if m.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		m.Add(m, mod)
	}
	be := m.Bytes()
	var tmp [16]byte
	copy(tmp[16-len(be):], be)
	for i := 0; i < 16; i++ {
		b[i] = tmp[15-i]
	}
	return nil
}

func i128FromLE(b []byte) *big.Int {
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	n := new(big.Int).SetBytes(be[:])
	if be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		n.Sub(n, mod)
	}
	return n
}

// ToValue encodes an Interval as a Value[TAIInterval].
func ToValue(iv Interval) (value.Value[TAIInterval], error) {
	var raw [32]byte
	if err := putI128LE(raw[:16], iv.Start); err != nil {
		return value.Value[TAIInterval]{}, err
	}
	if err := putI128LE(raw[16:], iv.End); err != nil {
		return value.Value[TAIInterval]{}, err
	}
	return value.FromRawBytes[TAIInterval](raw), nil
}

// FromValue decodes a Value[TAIInterval] back into an Interval.
func FromValue(v value.Value[TAIInterval]) Interval {
	raw := v.Bytes()
	return Interval{
		Start: i128FromLE(raw[:16]),
		End:   i128FromLE(raw[16:]),
	}
}

// millisToNanos is a convenience conversion used by callers that track
// wall-clock time in milliseconds, the unit pile's on-disk headers use
// for their own timestamps.
func millisToNanos(ms uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(ms), big.NewInt(1_000_000))
}

// FromMillisRange builds an Interval from millisecond TAI timestamps.
func FromMillisRange(startMillis, endMillis uint64) Interval {
	return Interval{Start: millisToNanos(startMillis), End: millisToNanos(endMillis)}
}
