// Package memstore implements an in-memory blob and branch store: the
// scratch buffer a repo.Workspace layers over a persistent reader for its
// pending commits before they're pushed.
package memstore

import (
	"sync"

	"trible.dev/space/hash"
	"trible.dev/space/id"
	"trible.dev/space/store"
)

// Store is a mutex-guarded in-memory BlobStore/BranchStore. The zero value
// is not ready for use; construct with New.
type Store struct {
	mu        sync.RWMutex
	hashProto hash.Protocol
	blobs     map[[32]byte][]byte
	branches  map[id.Id][32]byte
}

// New returns an empty Store hashing blobs with h.
func New(h hash.Protocol) *Store {
	return &Store{
		hashProto: h,
		blobs:     map[[32]byte][]byte{},
		branches:  map[id.Id][32]byte{},
	}
}

// Put stores payload under its content handle and returns the handle.
func (s *Store) Put(payload []byte) ([32]byte, error) {
	handle := s.hashProto.Sum(payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[handle]; !ok {
		s.blobs[handle] = append([]byte(nil), payload...)
	}
	return handle, nil
}

// Get returns the blob payload stored under handle, if any.
func (s *Store) Get(handle [32]byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[handle]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Update performs the same branch-head CAS every backend in this module
// exposes: branch's current head must equal old for new to be written.
func (s *Store) Update(branch id.Id, old, new [32]byte) (store.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.branches[branch]
	if current != old {
		return store.UpdateResult{Success: false, Observed: current}, nil
	}
	s.branches[branch] = new
	return store.UpdateResult{Success: true}, nil
}

// Head returns branch's current head handle, if the branch has ever been
// observed in this store.
func (s *Store) Head(branch id.Id) ([32]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.branches[branch]
	return h, ok, nil
}

// Delete removes the blob stored under handle, if present. Used by
// repo.Keep to reclaim blobs a reachability sweep found unreferenced.
func (s *Store) Delete(handle [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}

// Each calls f with every stored blob's handle and payload. Used by
// repo.Push to drain a workspace's scratch buffer into persistent storage
// and by reachability/GC to enumerate candidates in an in-memory store.
func (s *Store) Each(f func(handle [32]byte, payload []byte) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for h, b := range s.blobs {
		if !f(h, b) {
			return
		}
	}
}
