package repo

import (
	"trible.dev/space/blob/schema/longstring"
	"trible.dev/space/blob/schema/simplearchive"
	"trible.dev/space/id"
	"trible.dev/space/sig"
	"trible.dev/space/store"
	"trible.dev/space/tribleset"
)

// State is a Workspace's position in its state machine: Detached (no
// branch), Tracking (has branch_id + head), Dirty (pending commits not
// yet pushed).
type State int

const (
	Detached State = iota
	Tracking
	Dirty
)

func (s State) String() string {
	switch s {
	case Detached:
		return "Detached"
	case Tracking:
		return "Tracking"
	case Dirty:
		return "Dirty"
	default:
		return "Unknown"
	}
}

// Workspace buffers new commits in scratch, a blob store layered over the
// Repo's persistent backend, until Push transfers them.
type Workspace struct {
	repo    *Repo
	branch  id.Id
	scratch store.BlobStore

	head     [32]byte // current (possibly uncommitted) head
	baseHead [32]byte // head last observed as the branch's persisted value
	state    State
	signer   sig.Signer
}

// Detach returns a Workspace with no tracked branch, its scratch buffer
// layered directly over backend with nothing pulled yet. Useful for
// building a commit graph before a branch exists to anchor it to.
func Detach(r *Repo, scratch store.BlobStore) *Workspace {
	return &Workspace{repo: r, scratch: scratch, state: Detached}
}

// WithSigner attaches signer; subsequent Commit calls sign their content.
func (ws *Workspace) WithSigner(signer sig.Signer) *Workspace {
	ws.signer = signer
	return ws
}

// State reports the workspace's current state machine position.
func (ws *Workspace) State() State { return ws.state }

// Head returns the workspace's current commit handle (the all-zero value
// if nothing has been committed in this workspace yet).
func (ws *Workspace) Head() [32]byte { return ws.head }

// Commit creates a commit trible set (content handle, parents = current
// head, optional message, signature) and sets the workspace head to its
// handle. change is stored as the commit's own incremental content;
// Checkout reconstructs the full graph by walking ancestors.
func (ws *Workspace) Commit(change tribleset.Set, msg string) error {
	handle, err := ws.commitRaw(change, ws.parentsFromHead(), msg)
	if err != nil {
		return err
	}
	ws.head = handle
	ws.state = Dirty
	return nil
}

func (ws *Workspace) parentsFromHead() [][32]byte {
	if ws.head == ([32]byte{}) {
		return nil
	}
	return [][32]byte{ws.head}
}

// commitRaw is the shared constructor Commit and Merge both drive: pack and
// store change and an optional message, sign if a signer is attached, build
// and store the commit metadata blob, and return its handle.
func (ws *Workspace) commitRaw(change tribleset.Set, parents [][32]byte, msg string) ([32]byte, error) {
	contentBlob := simplearchive.Pack(change)
	contentHandle, err := ws.scratch.Put(contentBlob.Bytes())
	if err != nil {
		return [32]byte{}, &Error{Code: IoError, Msg: "repo: put content blob", Err: err}
	}

	m := CommitMetadata{ContentHandle: contentHandle, Parents: parents}

	if msg != "" {
		msgBlob, err := longstring.ToBlob(msg)
		if err != nil {
			return [32]byte{}, &Error{Code: Invalid, Msg: "repo: message", Err: err}
		}
		msgHandle, err := ws.scratch.Put(msgBlob.Bytes())
		if err != nil {
			return [32]byte{}, &Error{Code: IoError, Msg: "repo: put message blob", Err: err}
		}
		m.MessageHandle = msgHandle
		m.HasMessage = true
	}

	if ws.signer != nil {
		m.SignedBy = ws.signer.PublicKey()
		m.Signature = ws.signer.Sign(contentBlob.Bytes())
		m.Signed = true
	}

	metaSet, err := buildCommitTribles(m)
	if err != nil {
		return [32]byte{}, err
	}
	metaBlob := simplearchive.Pack(metaSet)
	handle, err := ws.scratch.Put(metaBlob.Bytes())
	if err != nil {
		return [32]byte{}, &Error{Code: IoError, Msg: "repo: put commit blob", Err: err}
	}
	return handle, nil
}

// PushResult is the outcome of Push: a result type, never an error.
type PushResult struct {
	Success bool
	// Conflict holds the rebased workspace to merge and retry from, set
	// only when Success is false.
	Conflict *Workspace
}

// Push transfers new blobs from the workspace's scratch store into
// persistent storage, then updates the branch head from baseHead to
// head. On conflict it returns a workspace rebased on the observed head;
// the caller must Merge and Push again.
func (ws *Workspace) Push() (PushResult, error) {
	if ws.state == Detached {
		return PushResult{}, &Error{Code: Invalid, Msg: "repo: push from a detached workspace (no branch)"}
	}
	if ws.head == ws.baseHead {
		return PushResult{Success: true}, nil
	}

	if err := ws.drainScratch(); err != nil {
		return PushResult{}, err
	}

	res, err := ws.repo.backend.Update(ws.branch, ws.baseHead, ws.head)
	if err != nil {
		return PushResult{}, &Error{Code: IoError, Msg: "repo: branch update", Err: err}
	}
	if res.Success {
		ws.baseHead = ws.head
		ws.state = Tracking
		return PushResult{Success: true}, nil
	}

	conflictWs := &Workspace{
		repo:     ws.repo,
		branch:   ws.branch,
		scratch:  ws.scratch,
		head:     res.Observed,
		baseHead: res.Observed,
		state:    Tracking,
		signer:   ws.signer,
	}
	return PushResult{Conflict: conflictWs}, nil
}

// drainScratch copies every blob the scratch buffer holds that the
// persistent backend hasn't seen yet, enumerating via the optional Each
// method memstore.Store exposes.
func (ws *Workspace) drainScratch() error {
	type enumerable interface {
		Each(f func(handle [32]byte, payload []byte) bool)
	}
	en, ok := ws.scratch.(enumerable)
	if !ok {
		return nil
	}
	var putErr error
	en.Each(func(handle [32]byte, payload []byte) bool {
		if _, found, err := ws.repo.backend.Get(handle); err != nil {
			putErr = &Error{Code: IoError, Msg: "repo: check backend before transfer", Err: err}
			return false
		} else if found {
			return true
		}
		if _, err := ws.repo.backend.Put(payload); err != nil {
			putErr = &Error{Code: IoError, Msg: "repo: transfer blob to backend", Err: err}
			return false
		}
		return true
	})
	return putErr
}

// Merge adds other's commit handle as an additional parent of the
// receiver's pending commit; content is the union of both workspaces'
// checked-out tribles, committed as a fresh commit whose parents are
// {ws.head, other.head}.
func (ws *Workspace) Merge(other *Workspace) error {
	ours, err := ws.repo.Checkout(ws.head, ws.scratch)
	if err != nil {
		return err
	}
	theirs, err := ws.repo.Checkout(other.head, other.scratch)
	if err != nil {
		return err
	}
	union := ours.Union(theirs)

	var parents [][32]byte
	if ws.head != ([32]byte{}) {
		parents = append(parents, ws.head)
	}
	if other.head != ([32]byte{}) {
		parents = append(parents, other.head)
	}

	handle, err := ws.commitRaw(union, parents, "merge")
	if err != nil {
		return err
	}
	ws.head = handle
	ws.state = Dirty
	return nil
}

// Checkout materializes the transitive closure of content tribles
// referenced by the workspace's current head and its ancestors.
func (ws *Workspace) Checkout() (tribleset.Set, error) {
	return ws.repo.Checkout(ws.head, ws.scratch)
}
