package repo

import "trible.dev/space/id"

// Well-known attribute ids a commit's metadata trible set and a branch's
// anchor commit use to describe themselves, in metadata.go's fixed-hex-id
// style.
var (
	AttrContentHandle = mustID("C0117EA7F4A04B1A9F7E1B0C0BADC0DE")
	AttrParent        = mustID("9A8EE17101B04D0EAF6E40F94B7A0BEE")
	AttrMessageHandle = mustID("5E55A9EF0E3A4B5690C5F1D67E55A9E5")
	AttrSignedBy      = mustID("51611EDB1A8641C7B18F84F0513E1181")
	AttrSignatureR    = mustID("511A7E000F2647E6A72F9D5101100012")
	AttrSignatureS    = mustID("511A7E000F2647E6A72F9D5101100013")

	AttrBranchName    = mustID("8AA2C11E0A9C4AA3B5A0C0FFEE0061D1")
	AttrBranchSignKey = mustID("8AA2C11E0A9C4AA3B5A0C0FFEE0061D3")
)

func mustID(hexStr string) id.Id {
	if len(hexStr) != 32 {
		panic("repo: well-known id literal must be 32 hex chars")
	}
	var out [16]byte
	for i := 0; i < 16; i++ {
		out[i] = hexByte(hexStr[i*2], hexStr[i*2+1])
	}
	v, err := id.FromBytes(out[:])
	if err != nil {
		panic(err)
	}
	return v
}

func hexByte(hi, lo byte) byte {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		panic("repo: invalid hex digit")
	}
}
