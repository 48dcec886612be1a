package repo

import (
	"testing"

	"trible.dev/space/hash"
	"trible.dev/space/memstore"
)

func TestReachableFollowsHandleChain(t *testing.T) {
	s := memstore.New(hash.Blake3{})

	leaf, err := s.Put([]byte("leaf"))
	if err != nil {
		t.Fatalf("put leaf: %v", err)
	}
	mid, err := s.Put(leaf[:])
	if err != nil {
		t.Fatalf("put mid: %v", err)
	}
	root, err := s.Put(mid[:])
	if err != nil {
		t.Fatalf("put root: %v", err)
	}
	// An unreachable blob with no path from root.
	orphan, err := s.Put([]byte("orphan"))
	if err != nil {
		t.Fatalf("put orphan: %v", err)
	}

	reachable, err := Reachable(s, [][32]byte{root})
	if err != nil {
		t.Fatalf("Reachable: %v", err)
	}
	for _, h := range []([32]byte){root, mid, leaf} {
		if !reachable[h] {
			t.Fatalf("expected %x reachable", h)
		}
	}
	if reachable[orphan] {
		t.Fatalf("orphan should not be reachable")
	}
}

func TestKeepDeletesUnreachableBlobs(t *testing.T) {
	s := memstore.New(hash.Blake3{})

	kept, err := s.Put([]byte("kept"))
	if err != nil {
		t.Fatalf("put kept: %v", err)
	}
	gone, err := s.Put([]byte("gone"))
	if err != nil {
		t.Fatalf("put gone: %v", err)
	}

	if err := Keep(s, map[[32]byte]bool{kept: true}); err != nil {
		t.Fatalf("Keep: %v", err)
	}

	if _, ok, _ := s.Get(kept); !ok {
		t.Fatalf("kept blob was deleted")
	}
	if _, ok, _ := s.Get(gone); ok {
		t.Fatalf("unreachable blob was not deleted")
	}
}

func TestTransferBlobsCopiesAndMapsHandles(t *testing.T) {
	src := memstore.New(hash.Blake3{})
	dst := memstore.New(hash.Blake3{})

	h1, err := src.Put([]byte("alpha"))
	if err != nil {
		t.Fatalf("put alpha: %v", err)
	}
	h2, err := src.Put([]byte("beta"))
	if err != nil {
		t.Fatalf("put beta: %v", err)
	}

	results, err := TransferBlobs(src, dst, [][32]byte{h1, h2})
	if err != nil {
		t.Fatalf("TransferBlobs: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Old != r.New {
			t.Fatalf("same hash protocol should yield identical handles, got old=%x new=%x", r.Old, r.New)
		}
		payload, ok, err := dst.Get(r.New)
		if err != nil || !ok {
			t.Fatalf("dst.Get(%x): ok=%v err=%v", r.New, ok, err)
		}
		_ = payload
	}
}

func TestTransferBlobsMissingSource(t *testing.T) {
	src := memstore.New(hash.Blake3{})
	dst := memstore.New(hash.Blake3{})

	_, err := TransferBlobs(src, dst, [][32]byte{{0xAA}})
	if err == nil {
		t.Fatalf("TransferBlobs: expected error for missing source blob")
	}
	repoErr, ok := err.(*Error)
	if !ok || repoErr.Code != NotFound {
		t.Fatalf("TransferBlobs: error = %v, want *Error{Code: NotFound}", err)
	}
}
