package sig

import "testing"

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	content := []byte("commit payload tribles")
	signature := signer.Sign(content)

	verifier := Ed25519Verifier{}
	if !verifier.Verify(signer.PublicKey(), content, signature) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyFailsOnAlteredContent(t *testing.T) {
	signer, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	signature := signer.Sign([]byte("original"))
	verifier := Ed25519Verifier{}
	if verifier.Verify(signer.PublicKey(), []byte("altered"), signature) {
		t.Fatalf("expected verification to fail on altered content")
	}
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	signer, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	signature := signer.Sign([]byte("x"))
	back := FromBytes(signature.Bytes())
	if back != signature {
		t.Fatalf("Signature Bytes/FromBytes round-trip mismatch")
	}
}
