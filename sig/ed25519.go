package sig

import "crypto/ed25519"

// Ed25519 implements both Signer and Verifier over stdlib crypto/ed25519.
type Ed25519 struct {
	priv ed25519.PrivateKey
	pub  PublicKey
}

// NewEd25519 wraps a 64-byte Ed25519 private key (stdlib's seed||public
// layout) as a Signer.
func NewEd25519(priv ed25519.PrivateKey) Ed25519 {
	var pub PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return Ed25519{priv: priv, pub: pub}
}

// GenerateEd25519 mints a fresh random Ed25519 keypair, for tests and
// example workspaces.
func GenerateEd25519() (Ed25519, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Ed25519{}, err
	}
	return NewEd25519(priv), nil
}

// PublicKey implements Signer.
func (e Ed25519) PublicKey() PublicKey { return e.pub }

// Sign implements Signer.
func (e Ed25519) Sign(content []byte) Signature {
	raw := ed25519.Sign(e.priv, content)
	var full [64]byte
	copy(full[:], raw)
	return FromBytes(full)
}

// Ed25519Verifier implements Verifier using stdlib crypto/ed25519.
type Ed25519Verifier struct{}

// Verify implements Verifier.
func (Ed25519Verifier) Verify(pub PublicKey, content []byte, s Signature) bool {
	full := s.Bytes()
	return ed25519.Verify(ed25519.PublicKey(pub[:]), content, full[:])
}
