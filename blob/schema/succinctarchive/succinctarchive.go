// Package succinctarchive implements the SuccinctArchive blob schema: a
// compressed, six-index-recoverable serialization of a TribleSet built
// around a sorted value universe and per-column RoaringBitmap postings.
package succinctarchive

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"trible.dev/space/blob"
	"trible.dev/space/id"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
)

// SuccinctArchive is the schema marker type.
type SuccinctArchive struct{}

// SchemaID implements blob.Schema.
func (SuccinctArchive) SchemaID() [16]byte {
	return [16]byte{'s', 'u', 'c', 'c', 'a', 'r', 'c', 'h'}
}

var magic = [4]byte{'S', 'U', 'C', 'A'}

const formatVersion = 1

// universe is the sorted, deduplicated set of every 32-byte value that
// appears in any E, A, or V position. E and A ids are stored padded the
// same way value/schema/genid encodes them (16 zero bytes followed by
// the id), so one universe and one binary-search accessor serve all
// three trible columns. RoaringBitmap compression, not byte-fragment
// dictionary coding, is this archive's compression strategy.
type universe [][32]byte

func (u universe) search(v [32]byte) (int, bool) {
	i := sort.Search(len(u), func(i int) bool { return bytes.Compare(u[i][:], v[:]) >= 0 })
	if i < len(u) && u[i] == v {
		return i, true
	}
	return 0, false
}

func padID(i id.Id) [32]byte {
	var out [32]byte
	copy(out[16:], i[:])
	return out
}

// Build returns the empty SuccinctArchive schema marker; it does not read
// s. The encoded archive (a sorted universe of every distinct E/A/V value
// plus three RoaringBitmap posting-list maps, one per trible column, from
// universe position to the row indices using that value) is produced by
// Pack.
func Build(s tribleset.Set) SuccinctArchive {
	return SuccinctArchive{}
	// Build is stateless: the archive's actual payload lives in the
	// Blob produced by Pack. This function exists so callers mirror the
	// spec's Build(TribleSet) SuccinctArchive / Project() TribleSet
	// round-trip shape with Pack/Unpack underneath.
}

// Pack serializes s into a SuccinctArchive blob.
func Pack(s tribleset.Set) blob.Blob[SuccinctArchive] {
	tribles := make([]trible.Trible, 0, s.Len())
	s.Each(func(t trible.Trible) bool {
		tribles = append(tribles, t)
		return true
	})

	uniq := make(map[[32]byte]struct{}, len(tribles)*2)
	for _, t := range tribles {
		uniq[padID(t.E())] = struct{}{}
		uniq[padID(t.A())] = struct{}{}
		uniq[t.V()] = struct{}{}
	}
	u := make(universe, 0, len(uniq))
	for v := range uniq {
		u = append(u, v)
	}
	sort.Slice(u, func(i, j int) bool { return bytes.Compare(u[i][:], u[j][:]) < 0 })

	ePostings := map[uint32]*roaring.Bitmap{}
	aPostings := map[uint32]*roaring.Bitmap{}
	vPostings := map[uint32]*roaring.Bitmap{}
	addPosting := func(m map[uint32]*roaring.Bitmap, pos uint32, row uint32) {
		bm, ok := m[pos]
		if !ok {
			bm = roaring.New()
			m[pos] = bm
		}
		bm.Add(row)
	}
	for row, t := range tribles {
		ePos, _ := u.search(padID(t.E()))
		aPos, _ := u.search(padID(t.A()))
		vPos, _ := u.search(t.V())
		addPosting(ePostings, uint32(ePos), uint32(row))
		addPosting(aPostings, uint32(aPos), uint32(row))
		addPosting(vPostings, uint32(vPos), uint32(row))
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)
	writeUint64(&buf, uint64(len(tribles)))
	writeUint64(&buf, uint64(len(u)))
	for _, v := range u {
		buf.Write(v[:])
	}
	writePostings(&buf, ePostings)
	writePostings(&buf, aPostings)
	writePostings(&buf, vPostings)

	return blob.FromRawBytes[SuccinctArchive](buf.Bytes())
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writePostings(buf *bytes.Buffer, postings map[uint32]*roaring.Bitmap) {
	positions := make([]uint32, 0, len(postings))
	for pos := range postings {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	writeUint64(buf, uint64(len(positions)))
	for _, pos := range positions {
		var posBytes [4]byte
		binary.LittleEndian.PutUint32(posBytes[:], pos)
		buf.Write(posBytes[:])
		encoded, err := postings[pos].ToBytes()
		if err != nil {
			// RoaringBitmap serialization of an in-memory bitmap this
			// package itself built cannot fail; a failure here means
			// the bitmap was corrupted by something outside this file.
			panic("succinctarchive: bitmap serialization: " + err.Error())
		}
		writeUint64(buf, uint64(len(encoded)))
		buf.Write(encoded)
	}
}

func readPostings(r *bytes.Reader) (map[uint32][]uint32, int, error) {
	rows := map[uint32][]uint32{}
	n, err := readUint64(r)
	if err != nil {
		return nil, 0, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated postings count"}
	}
	maxRow := -1
	for i := uint64(0); i < n; i++ {
		var posBytes [4]byte
		if _, err := io.ReadFull(r, posBytes[:]); err != nil {
			return nil, 0, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated posting position"}
		}
		pos := binary.LittleEndian.Uint32(posBytes[:])
		bmLen, err := readUint64(r)
		if err != nil {
			return nil, 0, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated bitmap length"}
		}
		bmBytes := make([]byte, bmLen)
		if _, err := io.ReadFull(r, bmBytes); err != nil {
			return nil, 0, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated bitmap payload"}
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(bmBytes); err != nil {
			return nil, 0, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: bad bitmap encoding"}
		}
		bm.Iterate(func(row uint32) bool {
			rows[pos] = append(rows[pos], row)
			if int(row) > maxRow {
				maxRow = int(row)
			}
			return true
		})
	}
	return rows, maxRow, nil
}

// Unpack validates and decodes b back into a tribleset.Set.
func Unpack(b blob.Blob[SuccinctArchive]) (tribleset.Set, error) {
	raw := b.Bytes()
	r := bytes.NewReader(raw)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil || gotMagic != magic {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: bad magic"}
	}
	version, err := r.ReadByte()
	if err != nil || version != formatVersion {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: unsupported version"}
	}
	n, err := readUint64(r)
	if err != nil {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated header"}
	}
	universeLen, err := readUint64(r)
	if err != nil {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated header"}
	}

	u := make(universe, universeLen)
	for i := range u {
		if _, err := io.ReadFull(r, u[i][:]); err != nil {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: truncated universe"}
		}
	}

	ePos, eMax, err := readPostings(r)
	if err != nil {
		return tribleset.Set{}, err
	}
	aPos, aMax, err := readPostings(r)
	if err != nil {
		return tribleset.Set{}, err
	}
	vPos, vMax, err := readPostings(r)
	if err != nil {
		return tribleset.Set{}, err
	}

	rowCount := int(n)
	if rowCount == 0 {
		if eMax >= 0 || aMax >= 0 || vMax >= 0 {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: postings reference rows but trible count is zero"}
		}
		return tribleset.New(), nil
	}
	if eMax >= rowCount || aMax >= rowCount || vMax >= rowCount {
		return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: posting row index out of range"}
	}

	eRow := make([]uint32, rowCount)
	aRow := make([]uint32, rowCount)
	vRow := make([]uint32, rowCount)
	fill := func(postings map[uint32][]uint32, dst []uint32) error {
		seen := make([]bool, len(dst))
		for pos, rows := range postings {
			for _, row := range rows {
				if seen[row] {
					return &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: row claimed by two universe positions"}
				}
				seen[row] = true
				dst[row] = pos
			}
		}
		for _, ok := range seen {
			if !ok {
				return &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: row missing from postings"}
			}
		}
		return nil
	}
	if err := fill(ePos, eRow); err != nil {
		return tribleset.Set{}, err
	}
	if err := fill(aPos, aRow); err != nil {
		return tribleset.Set{}, err
	}
	if err := fill(vPos, vRow); err != nil {
		return tribleset.Set{}, err
	}

	out := tribleset.New()
	for row := 0; row < rowCount; row++ {
		if int(eRow[row]) >= len(u) || int(aRow[row]) >= len(u) || int(vRow[row]) >= len(u) {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: universe position out of range"}
		}
		ePadded := u[eRow[row]]
		aPadded := u[aRow[row]]
		eID, err := id.FromBytes(ePadded[16:])
		if err != nil {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: entity column is not an id: " + err.Error()}
		}
		aID, err := id.FromBytes(aPadded[16:])
		if err != nil {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: attribute column is not an id: " + err.Error()}
		}
		t, err := trible.New(eID, aID, u[vRow[row]])
		if err != nil {
			return tribleset.Set{}, &blob.Error{Code: blob.Invalid, Msg: "succinctarchive: " + err.Error()}
		}
		out = out.Insert(t)
	}
	return out, nil
}
