// Package store declares the narrow blob/branch storage contract every
// backend in this module (pile, kvstore, objectstore, memstore) satisfies,
// so repo can depend on the contract without importing any one backend.
package store

import "trible.dev/space/id"

// UpdateResult is the outcome of a branch-head CAS: a result type, never
// an error. A losing compare-and-swap is an ordinary, expected outcome
// for a concurrent writer, not a failure condition.
type UpdateResult struct {
	Success  bool
	Observed [32]byte
}

// BlobStore is the content-addressed half of the contract: Put stores a
// payload and returns its content handle, Get retrieves it by handle.
type BlobStore interface {
	Put(payload []byte) ([32]byte, error)
	Get(handle [32]byte) ([]byte, bool, error)
}

// BranchStore is the mutable half of the contract: a compare-and-swap
// update per branch id, and a current-head lookup.
type BranchStore interface {
	Update(branch id.Id, old, new [32]byte) (UpdateResult, error)
	Head(branch id.Id) ([32]byte, bool, error)
}

// Store is the full contract a repository backend implements.
type Store interface {
	BlobStore
	BranchStore
}
