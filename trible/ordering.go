package trible

// Ordering permutes a Trible's 64 bytes into one of the six field
// orderings a TribleSet indexes under. Each ordering also exposes a
// Segments split so PATCH can answer segment-count queries at field
// granularity: distinct-entity counts, distinct-attribute counts,
// distinct-value counts.
type Ordering struct {
	// Name identifies the ordering, e.g. "EAV", "VEA".
	Name string
	// Segments gives the byte length of each field in permuted order.
	// They always sum to Len; segment boundaries fall on field
	// boundaries, never inside a field.
	Segments [3]int

	permute   func(Trible) [Len]byte
	depermute func([Len]byte) Trible
}

// Permute reorders t's bytes into this ordering's key layout.
func (o Ordering) Permute(t Trible) [Len]byte {
	return o.permute(t)
}

// Depermute reconstructs a Trible from a key in this ordering's layout.
func (o Ordering) Depermute(key [Len]byte) Trible {
	return o.depermute(key)
}

// KeyLen returns the permuted key length, Len, for patch.Config.KeyLen.
func (o Ordering) KeyLen() int {
	return Len
}

// SegmentLens returns Segments as a slice, for patch.Config.SegmentLens.
func (o Ordering) SegmentLens() []int {
	return []int{o.Segments[0], o.Segments[1], o.Segments[2]}
}

func splice(parts ...[]byte) [Len]byte {
	var out [Len]byte
	off := 0
	for _, p := range parts {
		off += copy(out[off:], p)
	}
	return out
}

// EAV is the identity ordering: entity, attribute, value.
var EAV = Ordering{
	Name:     "EAV",
	Segments: [3]int{16, 16, 32},
	permute: func(t Trible) [Len]byte {
		return t.Bytes()
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(key)
	},
}

// EVA orders entity, value, attribute.
var EVA = Ordering{
	Name:     "EVA",
	Segments: [3]int{16, 32, 16},
	permute: func(t Trible) [Len]byte {
		return splice(t[0:16], t[32:64], t[16:32])
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(splice(key[0:16], key[48:64], key[16:48]))
	},
}

// AEV orders attribute, entity, value.
var AEV = Ordering{
	Name:     "AEV",
	Segments: [3]int{16, 16, 32},
	permute: func(t Trible) [Len]byte {
		return splice(t[16:32], t[0:16], t[32:64])
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(splice(key[16:32], key[0:16], key[32:64]))
	},
}

// AVE orders attribute, value, entity.
var AVE = Ordering{
	Name:     "AVE",
	Segments: [3]int{16, 32, 16},
	permute: func(t Trible) [Len]byte {
		return splice(t[16:32], t[32:64], t[0:16])
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(splice(key[48:64], key[0:16], key[16:48]))
	},
}

// VEA orders value, entity, attribute.
var VEA = Ordering{
	Name:     "VEA",
	Segments: [3]int{32, 16, 16},
	permute: func(t Trible) [Len]byte {
		return splice(t[32:64], t[0:16], t[16:32])
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(splice(key[32:48], key[48:64], key[0:32]))
	},
}

// VAE orders value, attribute, entity.
var VAE = Ordering{
	Name:     "VAE",
	Segments: [3]int{32, 16, 16},
	permute: func(t Trible) [Len]byte {
		return splice(t[32:64], t[16:32], t[0:16])
	},
	depermute: func(key [Len]byte) Trible {
		return Trible(splice(key[48:64], key[32:48], key[0:32]))
	},
}

// Orderings lists all six index orderings in the order TribleSet maintains
// them.
var Orderings = [6]Ordering{EAV, EVA, AEV, AVE, VEA, VAE}
