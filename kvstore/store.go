// Package kvstore implements a durable, non-Pile local blob and branch
// store backed by bbolt: a second local backend satisfying the same
// BlobStore/BranchStore contract as Pile, useful when a single mmap'd log
// file isn't the right fit (frequent single-blob deletes, no append-only
// requirement).
package kvstore

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"trible.dev/space/hash"
	"trible.dev/space/id"
	"trible.dev/space/store"
)

var (
	bucketBlobs    = []byte("blobs")
	bucketBranches = []byte("branches")
)

// Store is a bbolt-backed blob and branch store. Blobs are keyed by their
// content handle; branches are keyed by their 16-byte id and hold a single
// 32-byte current-head value, the same CAS shape every backend in this module exposes.
type Store struct {
	db        *bolt.DB
	hashProto hash.Protocol
	logger    *zap.Logger
}

// Open opens (creating if absent) the bbolt database at cfg.Path and
// ensures both buckets exist.
func Open(cfg Config, h hash.Protocol, logger *zap.Logger) (*Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, &Error{Code: InvalidConfig, Msg: err.Error()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "kvstore: open bbolt", Err: err}
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlobs, bucketBranches} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, &Error{Code: IoError, Msg: "kvstore: create buckets", Err: err}
	}

	return &Store{db: db, hashProto: h, logger: logger}, nil
}

// Close releases the underlying bbolt database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return &Error{Code: IoError, Msg: "kvstore: close", Err: err}
	}
	return nil
}

// Put stores payload under its content handle and returns the handle.
func (s *Store) Put(payload []byte) ([32]byte, error) {
	handle := s.hashProto.Sum(payload)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put(handle[:], payload)
	})
	if err != nil {
		return [32]byte{}, &Error{Code: IoError, Msg: "kvstore: put blob", Err: err}
	}
	return handle, nil
}

// Get returns the blob payload stored under handle, verifying it still
// hashes to handle and returning a HashMismatch error rather than a stale
// payload if the on-disk bytes have been corrupted since they were written.
func (s *Store) Get(handle [32]byte) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get(handle[:])
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, &Error{Code: IoError, Msg: "kvstore: get blob", Err: err}
	}
	if out == nil {
		return nil, false, nil
	}
	if s.hashProto.Sum(out) != handle {
		return nil, false, &Error{Code: HashMismatch, Msg: "kvstore: stored blob no longer hashes to its handle"}
	}
	return out, true, nil
}

// Each calls f with every stored blob's handle and payload. Used by
// repo.Keep to sweep this store for unreferenced blobs.
func (s *Store) Each(f func(handle [32]byte, payload []byte) bool) {
	_ = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).ForEach(func(k, v []byte) error {
			var handle [32]byte
			copy(handle[:], k)
			if !f(handle, v) {
				return fmt.Errorf("stop")
			}
			return nil
		})
	})
}

// Delete removes the blob stored under handle, if present. Used by
// repo.Keep to reclaim blobs a reachability sweep found unreferenced.
func (s *Store) Delete(handle [32]byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Delete(handle[:])
	})
	if err != nil {
		return &Error{Code: IoError, Msg: "kvstore: delete blob", Err: err}
	}
	return nil
}

// Update performs the same branch-head CAS every backend in this module exposes: branch's
// current head must equal old for new to be written.
func (s *Store) Update(branch id.Id, old, new [32]byte) (store.UpdateResult, error) {
	var result store.UpdateResult
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBranches)
		var current [32]byte
		if v := b.Get(branch[:]); v != nil {
			copy(current[:], v)
		}
		if current != old {
			result = store.UpdateResult{Success: false, Observed: current}
			return nil
		}
		if err := b.Put(branch[:], new[:]); err != nil {
			return err
		}
		result = store.UpdateResult{Success: true}
		return nil
	})
	if err != nil {
		return store.UpdateResult{}, &Error{Code: IoError, Msg: "kvstore: update branch", Err: err}
	}
	return result, nil
}

// Head returns branch's current head handle, if the branch has ever been
// observed in this store.
func (s *Store) Head(branch id.Id) ([32]byte, bool, error) {
	var out [32]byte
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBranches).Get(branch[:])
		if v == nil {
			return nil
		}
		copy(out[:], v)
		ok = true
		return nil
	})
	if err != nil {
		return [32]byte{}, false, &Error{Code: IoError, Msg: "kvstore: head", Err: err}
	}
	return out, ok, nil
}
