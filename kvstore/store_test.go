package kvstore

import (
	"path/filepath"
	"testing"

	"trible.dev/space/hash"
	"trible.dev/space/id"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(cfg, hash.SHA3256{}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	handle, err := s.Put([]byte("payload"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(handle)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "payload" {
		t.Fatalf("Get = %q, want %q", got, "payload")
	}
}

func TestGetUnknownHandle(t *testing.T) {
	s := openTestStore(t)
	var h [32]byte
	_, ok, err := s.Get(h)
	if err != nil || ok {
		t.Fatalf("Get(unknown) = ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestUpdateCAS(t *testing.T) {
	s := openTestStore(t)
	branch := id.NewRandom()
	var zero, h1, h2 [32]byte
	h1[0], h2[0] = 1, 2

	res, err := s.Update(branch, zero, h1)
	if err != nil || !res.Success {
		t.Fatalf("first update: %+v, %v", res, err)
	}
	res, err = s.Update(branch, zero, h2)
	if err != nil || res.Success || res.Observed != h1 {
		t.Fatalf("conflicting update: %+v, %v", res, err)
	}
	res, err = s.Update(branch, h1, h2)
	if err != nil || !res.Success {
		t.Fatalf("cas update: %+v, %v", res, err)
	}

	head, ok, err := s.Head(branch)
	if err != nil || !ok || head != h2 {
		t.Fatalf("Head = %v, %v, %v; want %v, true, nil", head, ok, err, h2)
	}
}

func TestOpenRejectsEmptyConfig(t *testing.T) {
	if _, err := Open(Config{}, hash.SHA3256{}, nil); err == nil {
		t.Fatalf("expected error for empty Config")
	}
}
