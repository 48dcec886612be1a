package repo

import "trible.dev/space/store"

// Reachable walks each root blob's bytes as a sequence of 32-byte
// candidates, looks up any candidate matching a stored handle, and
// iterates to a fixed point. A root or candidate with no matching blob
// is simply not traversed further; it is not an error, since ordinary
// content bytes routinely contain 32-byte runs that aren't handles at
// all.
func Reachable(reader store.BlobStore, roots [][32]byte) (map[[32]byte]bool, error) {
	visited := map[[32]byte]bool{}
	queue := append([][32]byte(nil), roots...)

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if visited[h] {
			continue
		}

		payload, ok, err := reader.Get(h)
		if err != nil {
			return nil, &Error{Code: IoError, Msg: "repo: reachable get", Err: err}
		}
		if !ok {
			continue
		}
		visited[h] = true

		for off := 0; off+32 <= len(payload); off += 32 {
			candidate := [32]byte(payload[off : off+32])
			if visited[candidate] {
				continue
			}
			if _, ok, err := reader.Get(candidate); err != nil {
				return nil, &Error{Code: IoError, Msg: "repo: reachable candidate get", Err: err}
			} else if ok {
				queue = append(queue, candidate)
			}
		}
	}
	return visited, nil
}

// EnumerableStore is a BlobStore that can also enumerate and delete its
// contents, the capability Keep needs to reclaim unreachable blobs.
// memstore.Store and kvstore.Store satisfy this; pile.Pile does not (an
// append-only file has no single-record delete) — reclaiming a pile's
// space is Transfer into a fresh file, not Keep.
type EnumerableStore interface {
	store.BlobStore
	Each(f func(handle [32]byte, payload []byte) bool)
	Delete(handle [32]byte) error
}

// Keep deletes every blob in s whose handle is not a member of
// reachable, retaining only the blobs a Reachable walk actually found.
func Keep(s EnumerableStore, reachable map[[32]byte]bool) error {
	var toDelete [][32]byte
	s.Each(func(handle [32]byte, _ []byte) bool {
		if !reachable[handle] {
			toDelete = append(toDelete, handle)
		}
		return true
	})
	for _, h := range toDelete {
		if err := s.Delete(h); err != nil {
			return &Error{Code: IoError, Msg: "repo: keep delete", Err: err}
		}
	}
	return nil
}

// Transfer is the outcome of moving one blob from src to dst: its handle
// under src's hash protocol and under dst's. The two are equal when both
// stores use the same protocol, distinct when dst transcodes.
type Transfer struct {
	Old [32]byte
	New [32]byte
}

// TransferBlobs streams each of handles from src to dst, yielding an
// (old_handle, new_handle) pair per item.
func TransferBlobs(src, dst store.BlobStore, handles [][32]byte) ([]Transfer, error) {
	out := make([]Transfer, 0, len(handles))
	for _, h := range handles {
		payload, ok, err := src.Get(h)
		if err != nil {
			return nil, &Error{Code: IoError, Msg: "repo: transfer get", Err: err}
		}
		if !ok {
			return nil, &Error{Code: NotFound, Msg: "repo: transfer source blob missing"}
		}
		newHandle, err := dst.Put(payload)
		if err != nil {
			return nil, &Error{Code: IoError, Msg: "repo: transfer put", Err: err}
		}
		out = append(out, Transfer{Old: h, New: newHandle})
	}
	return out, nil
}
