// Package repo implements the repository and branch protocol: turning a
// blob+branch store into a versioned graph of signed commits accessed
// through Workspace values.
package repo

import (
	"go.uber.org/zap"

	"trible.dev/space/blob"
	"trible.dev/space/blob/schema/longstring"
	"trible.dev/space/blob/schema/simplearchive"
	"trible.dev/space/hash"
	"trible.dev/space/id"
	"trible.dev/space/patch"
	"trible.dev/space/sig"
	"trible.dev/space/store"
	"trible.dev/space/trible"
	"trible.dev/space/tribleset"
)

// Repo is a content-addressed repository layered over a store.Store. All
// reads and writes go through the underlying store; Repo adds no
// buffering of its own — that's Workspace's job.
type Repo struct {
	backend   store.Store
	hashProto hash.Protocol
	verifier  sig.Verifier
	logger    *zap.Logger
}

// Open wraps backend as a Repo. verifier may be nil, in which case commit
// signatures are never checked (callers that don't need authentication).
func Open(backend store.Store, h hash.Protocol, verifier sig.Verifier, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{backend: backend, hashProto: h, verifier: verifier, logger: logger}
}

// CreateBranch mints a fresh branch id, optionally anchoring it at an
// existing commit handle, and writes a branch-metadata commit (name,
// initial head, signing key) via a from-nil Update on the new branch id.
// The branch-metadata commit is an ordinary commit whose
// content describes the branch itself (name, signing key) and whose parent
// is from, if given — the same shape every other commit has, so Checkout
// and Ancestors need no special case for a branch's first commit.
func (r *Repo) CreateBranch(from [32]byte, name string, signKey sig.PublicKey) (id.Id, error) {
	branchID := id.NewRandom()

	descriptor := tribleset.New()
	subject := id.NewRandom()

	if name != "" {
		nameBlob, err := longstring.ToBlob(name)
		if err != nil {
			return id.Nil, &Error{Code: Invalid, Msg: "repo: branch name", Err: err}
		}
		nameHandle, err := r.backend.Put(nameBlob.Bytes())
		if err != nil {
			return id.Nil, &Error{Code: IoError, Msg: "repo: put branch name blob", Err: err}
		}
		t, err := trible.New(subject, AttrBranchName, nameHandle)
		if err != nil {
			return id.Nil, &Error{Code: Invalid, Msg: "repo: branch name trible", Err: err}
		}
		descriptor = descriptor.Insert(t)
	}

	if signKey != ([32]byte{}) {
		t, err := trible.New(subject, AttrBranchSignKey, [32]byte(signKey))
		if err != nil {
			return id.Nil, &Error{Code: Invalid, Msg: "repo: branch sign key trible", Err: err}
		}
		descriptor = descriptor.Insert(t)
	}

	descriptorBlob := simplearchive.Pack(descriptor)
	contentHandle, err := r.backend.Put(descriptorBlob.Bytes())
	if err != nil {
		return id.Nil, &Error{Code: IoError, Msg: "repo: put branch descriptor blob", Err: err}
	}

	var parents [][32]byte
	if from != ([32]byte{}) {
		parents = [][32]byte{from}
	}
	metaSet, err := buildCommitTribles(CommitMetadata{ContentHandle: contentHandle, Parents: parents})
	if err != nil {
		return id.Nil, err
	}
	metaBlob := simplearchive.Pack(metaSet)
	initial, err := r.backend.Put(metaBlob.Bytes())
	if err != nil {
		return id.Nil, &Error{Code: IoError, Msg: "repo: put branch-metadata commit", Err: err}
	}

	res, err := r.backend.Update(branchID, [32]byte{}, initial)
	if err != nil {
		return id.Nil, &Error{Code: IoError, Msg: "repo: anchor branch head", Err: err}
	}
	if !res.Success {
		return id.Nil, &Error{Code: Invalid, Msg: "repo: freshly minted branch id already has a head"}
	}
	return branchID, nil
}

// Pull reads branch's current head and returns a Workspace tracking it,
// its scratch buffer layered over the Repo's persistent backend.
func (r *Repo) Pull(branch id.Id, scratch store.BlobStore) (*Workspace, error) {
	head, found, err := r.backend.Head(branch)
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "repo: head", Err: err}
	}
	if !found {
		return nil, &Error{Code: NotFound, Msg: "repo: branch not found"}
	}
	return &Workspace{
		repo:     r,
		branch:   branch,
		scratch:  scratch,
		head:     head,
		baseHead: head,
		state:    Tracking,
	}, nil
}

// getCommit fetches and decodes the commit metadata trible set stored
// under handle, checking both scratch (if non-nil) and the Repo's backend.
func (r *Repo) getCommit(handle [32]byte, scratch store.BlobStore) (CommitMetadata, error) {
	raw, err := r.getBlob(handle, scratch)
	if err != nil {
		return CommitMetadata{}, err
	}
	set, err := simplearchive.Unpack(blob.FromRawBytes[simplearchive.SimpleArchive](raw))
	if err != nil {
		return CommitMetadata{}, &Error{Code: Invalid, Msg: "repo: decode commit blob", Err: err}
	}
	return parseCommitTribles(set)
}

// getBlob fetches handle's bytes, preferring scratch if given and present.
func (r *Repo) getBlob(handle [32]byte, scratch store.BlobStore) ([]byte, error) {
	if scratch != nil {
		if raw, ok, err := scratch.Get(handle); err != nil {
			return nil, &Error{Code: IoError, Msg: "repo: scratch get", Err: err}
		} else if ok {
			return raw, nil
		}
	}
	raw, ok, err := r.backend.Get(handle)
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "repo: backend get", Err: err}
	}
	if !ok {
		return nil, &Error{Code: NotFound, Msg: "repo: blob not found"}
	}
	return raw, nil
}

// VerifyCommit validates a commit's signature: load the content blob and
// verify the signature against signed_by and the content bytes. An
// unsigned commit is legal but unauthenticated: VerifyCommit reports
// (false, nil) for it rather than an error.
func (r *Repo) VerifyCommit(handle [32]byte, scratch store.BlobStore) (bool, error) {
	m, err := r.getCommit(handle, scratch)
	if err != nil {
		return false, err
	}
	if !m.Signed {
		return false, nil
	}
	if r.verifier == nil {
		return false, &Error{Code: FailedValidation, Msg: "repo: no verifier configured"}
	}
	content, err := r.getBlob(m.ContentHandle, scratch)
	if err != nil {
		return false, err
	}
	return r.verifier.Verify(m.SignedBy, content, m.Signature), nil
}

// Checkout materializes the transitive closure of content tribles
// referenced by commit and its ancestors.
func (r *Repo) Checkout(handle [32]byte, scratch store.BlobStore) (tribleset.Set, error) {
	out := tribleset.New()
	visited := map[[32]byte]bool{}
	stack := [][32]byte{handle}

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == ([32]byte{}) || visited[h] {
			continue
		}
		visited[h] = true

		m, err := r.getCommit(h, scratch)
		if err != nil {
			return tribleset.Set{}, err
		}
		contentRaw, err := r.getBlob(m.ContentHandle, scratch)
		if err != nil {
			return tribleset.Set{}, err
		}
		content, err := simplearchive.Unpack(blob.FromRawBytes[simplearchive.SimpleArchive](contentRaw))
		if err != nil {
			return tribleset.Set{}, &Error{Code: Invalid, Msg: "repo: decode content blob", Err: err}
		}
		out = out.Union(content)

		stack = append(stack, m.Parents...)
	}
	return out, nil
}

// Ancestors does a BFS walk of handle's parents, returning every reachable
// commit handle keyed in a PATCH. handle itself is included.
func (r *Repo) Ancestors(handle [32]byte, scratch store.BlobStore) (patch.PATCH[struct{}], error) {
	cfg := patch.Config{KeyLen: 32, SegmentLens: []int{32}}
	out := patch.New[struct{}](cfg)
	if handle == ([32]byte{}) {
		return out, nil
	}

	visited := map[[32]byte]bool{}
	queue := [][32]byte{handle}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == ([32]byte{}) || visited[h] {
			continue
		}
		visited[h] = true
		out = out.Insert(h[:], struct{}{})

		m, err := r.getCommit(h, scratch)
		if err != nil {
			return patch.PATCH[struct{}]{}, err
		}
		queue = append(queue, m.Parents...)
	}
	return out, nil
}
