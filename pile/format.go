package pile

import "encoding/binary"

// blobMagic and branchMagic are the 16-byte markers that open every
// record, letting a reader distinguish a blob record from a branch
// record (and sanity-check against a mismatched or corrupted file)
// before parsing the rest of the header.
var (
	blobMagic   = [16]byte{'T', 'R', 'I', 'B', 'L', 'E', 'S', 'P', 'A', 'C', 'E', 'B', 'L', 'O', 'B', 0}
	branchMagic = [16]byte{'T', 'R', 'I', 'B', 'L', 'E', 'S', 'P', 'A', 'C', 'E', 'B', 'R', 'N', 0, 0}
)

const (
	// blobHeaderLen is magic(16) || timestamp(8) || length(8) || handle(32).
	blobHeaderLen = 64
	// branchHeaderLen is magic(16) || timestamp(8) || branch_id(16) ||
	// old_handle(32) || new_handle(32) = 104 bytes, the field list taken
	// as authoritative; the whole record — header only, no payload — is
	// then padded to the next 64-byte boundary like a blob record's
	// payload.
	branchHeaderLen = 104
	// alignment is the on-disk record alignment.
	alignment = 64
	// branchRecordLen is branchHeaderLen padded up to alignment.
	branchRecordLen = 128
)

// alignUp rounds n up to the next multiple of alignment.
func alignUp(n int64) int64 {
	return (n + alignment - 1) / alignment * alignment
}

type blobHeader struct {
	Timestamp uint64
	Length    uint64
	Handle    [32]byte
}

func encodeBlobHeader(h blobHeader) [blobHeaderLen]byte {
	var out [blobHeaderLen]byte
	copy(out[0:16], blobMagic[:])
	binary.LittleEndian.PutUint64(out[16:24], h.Timestamp)
	binary.LittleEndian.PutUint64(out[24:32], h.Length)
	copy(out[32:64], h.Handle[:])
	return out
}

func decodeBlobHeader(b []byte) (blobHeader, bool) {
	if len(b) < blobHeaderLen {
		return blobHeader{}, false
	}
	if [16]byte(b[0:16]) != blobMagic {
		return blobHeader{}, false
	}
	var h blobHeader
	h.Timestamp = binary.LittleEndian.Uint64(b[16:24])
	h.Length = binary.LittleEndian.Uint64(b[24:32])
	copy(h.Handle[:], b[32:64])
	return h, true
}

type branchHeader struct {
	Timestamp  uint64
	BranchID   [16]byte
	OldHandle  [32]byte
	NewHandle  [32]byte
}

func encodeBranchHeader(h branchHeader) [branchRecordLen]byte {
	var out [branchRecordLen]byte
	copy(out[0:16], branchMagic[:])
	binary.LittleEndian.PutUint64(out[16:24], h.Timestamp)
	copy(out[24:40], h.BranchID[:])
	copy(out[40:72], h.OldHandle[:])
	copy(out[72:104], h.NewHandle[:])
	// out[104:128] stays zero: alignment padding, no payload.
	return out
}

func decodeBranchHeader(b []byte) (branchHeader, bool) {
	if len(b) < branchHeaderLen {
		return branchHeader{}, false
	}
	if [16]byte(b[0:16]) != branchMagic {
		return branchHeader{}, false
	}
	var h branchHeader
	h.Timestamp = binary.LittleEndian.Uint64(b[16:24])
	copy(h.BranchID[:], b[24:40])
	copy(h.OldHandle[:], b[40:72])
	copy(h.NewHandle[:], b[72:104])
	return h, true
}
