package repo

import (
	"trible.dev/space/id"
	"trible.dev/space/sig"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
)

// CommitMetadata is the decoded shape of a commit's metadata trible set:
// a content handle, zero or more parent commit handles, an optional
// message handle, and an optional signature. Handles throughout
// this package are raw 32-byte content hashes — the same shape
// store.BlobStore already returns from Put — rather than the generic
// value.Value[Handle[H,S]] wrapper, since repo operates at runtime over
// whichever hash.Protocol a Repo was opened with, not a compile-time type
// parameter.
type CommitMetadata struct {
	ContentHandle [32]byte
	Parents       [][32]byte
	MessageHandle [32]byte
	HasMessage    bool
	SignedBy      sig.PublicKey
	Signature     sig.Signature
	Signed        bool
}

// buildCommitTribles constructs the trible set describing one commit:
// one freshly minted subject id carrying content_handle, zero or more
// parent, an optional message handle, and an optional signature.
func buildCommitTribles(m CommitMetadata) (tribleset.Set, error) {
	subject := id.NewRandom()
	set := tribleset.New()

	t, err := trible.New(subject, AttrContentHandle, m.ContentHandle)
	if err != nil {
		return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: content_handle trible", Err: err}
	}
	set = set.Insert(t)

	for _, p := range m.Parents {
		t, err := trible.New(subject, AttrParent, p)
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: parent trible", Err: err}
		}
		set = set.Insert(t)
	}

	if m.HasMessage {
		t, err := trible.New(subject, AttrMessageHandle, m.MessageHandle)
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: message_handle trible", Err: err}
		}
		set = set.Insert(t)
	}

	if m.Signed {
		t, err := trible.New(subject, AttrSignedBy, [32]byte(m.SignedBy))
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: signed_by trible", Err: err}
		}
		set = set.Insert(t)

		t, err = trible.New(subject, AttrSignatureR, [32]byte(m.Signature.R))
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: signature_r trible", Err: err}
		}
		set = set.Insert(t)

		t, err = trible.New(subject, AttrSignatureS, [32]byte(m.Signature.S))
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: signature_s trible", Err: err}
		}
		set = set.Insert(t)
	}

	return set, nil
}

// parseCommitTribles decodes a commit metadata trible set back into a
// CommitMetadata. A commit's trible set must share a single subject id
// across all its fields.
func parseCommitTribles(set tribleset.Set) (CommitMetadata, error) {
	var m CommitMetadata
	var subject id.Id
	haveSubject := false
	haveContent := false

	var signedByCount, sigRCount, sigSCount int

	set.Each(func(t trible.Trible) bool {
		e := t.E()
		if !haveSubject {
			subject = e
			haveSubject = true
		} else if e != subject {
			// Multiple subjects in one commit blob: malformed, but we let
			// the caller observe it through the missing-content-handle
			// check below rather than aborting iteration early.
			return true
		}

		switch t.A() {
		case AttrContentHandle:
			m.ContentHandle = t.V()
			haveContent = true
		case AttrParent:
			m.Parents = append(m.Parents, t.V())
		case AttrMessageHandle:
			m.MessageHandle = t.V()
			m.HasMessage = true
		case AttrSignedBy:
			m.SignedBy = sig.PublicKey(t.V())
			signedByCount++
		case AttrSignatureR:
			m.Signature.R = sig.R(t.V())
			sigRCount++
		case AttrSignatureS:
			m.Signature.S = sig.S(t.V())
			sigSCount++
		}
		return true
	})

	if !haveSubject || !haveContent {
		return CommitMetadata{}, &Error{Code: Invalid, Msg: "repo: commit trible set has no content_handle"}
	}

	switch {
	case signedByCount == 0 && sigRCount == 0 && sigSCount == 0:
		m.Signed = false
	case signedByCount == 1 && sigRCount == 1 && sigSCount == 1:
		m.Signed = true
	default:
		return CommitMetadata{}, &Error{Code: MissingSignature, Msg: "repo: commit has a partial signature"}
	}

	return m, nil
}
