package id

import "sync"

// ExclusiveId is a process-local ownership token asserting unique mutability
// rights over an Id. At any instant at most one ExclusiveId exists per Id
// value in a process; acquiring an already-held Id fails with
// FailedAcquire. Releasing an ExclusiveId returns the Id to the pool so it
// can be acquired again.
type ExclusiveId struct {
	value    Id
	released bool
}

// Value returns the underlying Id. The zero value of ExclusiveId has a nil
// Value and is not a valid holder.
func (e *ExclusiveId) Value() Id {
	return e.value
}

// pool is the process-wide set of currently-held ids, guarded by a mutex
// rather than a lock-free structure: acquisition is rare relative to the
// PATCH/TribleSet hot paths, so ordinary mutual exclusion per map is
// plenty.
var pool = struct {
	mu  sync.Mutex
	set map[Id]struct{}
}{set: make(map[Id]struct{})}

// Acquire claims exclusive ownership of id for the calling process. It fails
// with FailedAcquire if id is already held by an outstanding ExclusiveId.
func Acquire(value Id) (*ExclusiveId, error) {
	if value.IsNil() {
		return nil, &Error{Code: IsNilErr, Msg: "id: cannot acquire nil id"}
	}
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if _, held := pool.set[value]; held {
		return nil, &Error{Code: FailedAcquire, Msg: "id: " + value.String() + " already held"}
	}
	pool.set[value] = struct{}{}
	return &ExclusiveId{value: value}, nil
}

// AcquireRandom mints a fresh random Id and immediately acquires it. Since
// the Id is freshly minted, acquisition cannot fail.
func AcquireRandom() *ExclusiveId {
	value := NewRandom()
	pool.mu.Lock()
	defer pool.mu.Unlock()
	pool.set[value] = struct{}{}
	return &ExclusiveId{value: value}
}

// Release returns e's Id to the pool, after which it may be acquired again
// by any caller (including a future Acquire in this process). Release is
// idempotent.
func (e *ExclusiveId) Release() {
	if e == nil || e.released {
		return
	}
	pool.mu.Lock()
	delete(pool.set, e.value)
	pool.mu.Unlock()
	e.released = true
}
