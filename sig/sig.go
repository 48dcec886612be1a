// Package sig defines the pluggable signature protocol used to sign and
// verify commits. This package fixes the narrow Signer/Verifier contract
// and ships a thin adapter over crypto/ed25519.
package sig

// PublicKey, R and S are the three 32-byte halves the repo protocol
// stores as tribles.
type PublicKey [32]byte
type R [32]byte
type S [32]byte

// Signature is the split (r, s) representation: the two 32-byte halves
// of the 64-byte Ed25519 signature, stored as signature_r and
// signature_s tribles rather than one 64-byte blob.
type Signature struct {
	R R
	S S
}

// Bytes concatenates r||s into the 64-byte wire signature.
func (sig Signature) Bytes() [64]byte {
	var out [64]byte
	copy(out[:32], sig.R[:])
	copy(out[32:], sig.S[:])
	return out
}

// FromBytes splits a 64-byte wire signature into its r/s halves.
func FromBytes(b [64]byte) Signature {
	var sig Signature
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:])
	return sig
}

// Signer signs content blob bytes on behalf of a commit author.
type Signer interface {
	PublicKey() PublicKey
	Sign(content []byte) Signature
}

// Verifier verifies a signature produced by a Signer over content bytes.
type Verifier interface {
	Verify(pub PublicKey, content []byte, sig Signature) bool
}
