// Package pile implements the on-disk, append-only, memory-mapped blob and
// branch store: a single file holding a concatenation of 64-byte-aligned
// blob and branch records, read via mmap under a shared read lock and
// written by a single serialized appender per file.
package pile

import (
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/zap"

	"trible.dev/space/hash"
	"trible.dev/space/id"
	"trible.dev/space/store"
)

type blobLocation struct {
	offset int64
	length int64
}

// Pile is a single pile file opened for reading and writing. Readers (Get,
// Head) take a read lock over the in-memory indexes and the mmap'd data;
// writers (Put, Update) take the same lock exclusively to serialize
// appends. This trades some read/write concurrency against a
// reader-never-blocks-on-mmap design for a single, obviously correct
// synchronization primitive.
type Pile struct {
	mu sync.RWMutex

	f    *os.File
	data mmap.MMap

	hashProto hash.Protocol
	cfg       Config
	logger    *zap.Logger

	blobIndex   map[[32]byte]blobLocation
	branchIndex map[id.Id][32]byte
	validLen    int64
}

// Open opens (creating if absent) the pile file at cfg.Path, restoring its
// indexes by scanning from offset 0 and truncating any trailing garbage
// left by a crashed appender.
func Open(cfg Config, h hash.Protocol, logger *zap.Logger) (*Pile, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, &Error{Code: InvalidConfig, Msg: err.Error()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.OpenFile(cfg.Path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "pile: open", Err: err}
	}

	p := &Pile{
		f:           f,
		hashProto:   h,
		cfg:         cfg,
		logger:      logger,
		blobIndex:   map[[32]byte]blobLocation{},
		branchIndex: map[id.Id][32]byte{},
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &Error{Code: IoError, Msg: "pile: stat", Err: err}
	}
	if info.Size() > cfg.MaxFileSize {
		_ = f.Close()
		return nil, &Error{Code: FileTooLarge, Msg: "pile: file exceeds max_file_size on open"}
	}

	if err := p.remapLocked(); err != nil {
		_ = f.Close()
		return nil, &Error{Code: IoError, Msg: "pile: mmap", Err: err}
	}
	if err := p.restoreLocked(); err != nil {
		_ = p.data.Unmap()
		_ = f.Close()
		return nil, err
	}
	return p, nil
}

// remapLocked (re)maps the file's current contents. Callers must hold mu.
func (p *Pile) remapLocked() error {
	if p.data != nil {
		if err := p.data.Unmap(); err != nil {
			return err
		}
		p.data = nil
	}
	info, err := p.f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	m, err := mmap.Map(p.f, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	p.data = m
	return nil
}

// scanFromLocked validates and indexes every well-formed record starting at
// byte offset, stopping at the first record that fails validation (bad
// magic, a length that would overrun the file, or — for blob records — a
// hash mismatch). It returns the offset immediately after the last
// successfully indexed record. Callers must hold mu.
func (p *Pile) scanFromLocked(offset int64) int64 {
	data := p.data
	cur := offset
scan:
	for {
		if cur+16 > int64(len(data)) {
			break
		}
		magic := [16]byte(data[cur : cur+16])
		switch magic {
		case blobMagic:
			if cur+blobHeaderLen > int64(len(data)) {
				break scan
			}
			hdr, ok := decodeBlobHeader(data[cur : cur+blobHeaderLen])
			if !ok {
				break scan
			}
			total := blobHeaderLen + alignUp(int64(hdr.Length))
			if cur+total > int64(len(data)) {
				break scan
			}
			payloadStart := cur + blobHeaderLen
			payload := data[payloadStart : payloadStart+int64(hdr.Length)]
			if p.hashProto.Sum(payload) != hdr.Handle {
				break scan
			}
			p.blobIndex[hdr.Handle] = blobLocation{offset: payloadStart, length: int64(hdr.Length)}
			cur += total
		case branchMagic:
			if cur+branchRecordLen > int64(len(data)) {
				break scan
			}
			hdr, ok := decodeBranchHeader(data[cur : cur+branchHeaderLen])
			if !ok {
				break scan
			}
			p.branchIndex[id.Id(hdr.BranchID)] = hdr.NewHandle
			cur += branchRecordLen
		default:
			break scan
		}
	}
	return cur
}

// restoreLocked scans the whole file from offset 0, truncates trailing
// garbage, and rebuilds both indexes from scratch. Callers must hold mu.
func (p *Pile) restoreLocked() error {
	p.blobIndex = map[[32]byte]blobLocation{}
	p.branchIndex = map[id.Id][32]byte{}
	validLen := p.scanFromLocked(0)

	info, err := p.f.Stat()
	if err != nil {
		return &Error{Code: IoError, Msg: "pile: stat during restore", Err: err}
	}
	if validLen < info.Size() {
		if err := p.f.Truncate(validLen); err != nil {
			return &Error{Code: IoError, Msg: "pile: truncate trailing garbage", Err: err}
		}
		if err := p.remapLocked(); err != nil {
			return &Error{Code: IoError, Msg: "pile: remap after truncate", Err: err}
		}
	}
	p.validLen = validLen
	return nil
}

// Restore re-validates the file from the beginning and truncates any
// trailing garbage, as Open does. Safe to call concurrently with Refresh.
func (p *Pile) Restore() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.restoreLocked()
}

// Refresh extends the in-memory indexes incrementally from the last known
// valid offset, without truncating the file. Lets a reader pick up records
// a separate writer process has appended since this Pile was opened.
func (p *Pile) Refresh() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := p.f.Stat()
	if err != nil {
		return &Error{Code: IoError, Msg: "pile: stat during refresh", Err: err}
	}
	if info.Size() == int64(len(p.data)) {
		return nil
	}
	if err := p.remapLocked(); err != nil {
		return &Error{Code: IoError, Msg: "pile: remap during refresh", Err: err}
	}
	p.validLen = p.scanFromLocked(p.validLen)
	return nil
}

// Get returns the blob payload stored under handle, if any. A handle that
// is present in the index always satisfies hash(payload) == handle: the
// index is only ever populated by scanFromLocked after verifying that.
func (p *Pile) Get(handle [32]byte) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loc, ok := p.blobIndex[handle]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, loc.length)
	copy(out, p.data[loc.offset:loc.offset+loc.length])
	return out, true, nil
}

// Head returns branch's current head handle, if the branch has ever been
// observed in this pile.
func (p *Pile) Head(branch id.Id) ([32]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.branchIndex[branch]
	return h, ok, nil
}

// Put appends payload as a new blob record and returns its content handle.
func (p *Pile) Put(payload []byte) ([32]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	handle := p.hashProto.Sum(payload)
	hdr := encodeBlobHeader(blobHeader{
		Timestamp: uint64(time.Now().UnixMilli()),
		Length:    uint64(len(payload)),
		Handle:    handle,
	})

	pad := alignUp(int64(len(payload))) - int64(len(payload))
	recordLen := int64(blobHeaderLen) + int64(len(payload)) + pad
	if p.validLen+recordLen > p.cfg.MaxFileSize {
		return [32]byte{}, &Error{Code: FileTooLarge, Msg: "pile: put would exceed max_file_size"}
	}

	buf := make([]byte, 0, recordLen)
	buf = append(buf, hdr[:]...)
	buf = append(buf, payload...)
	buf = append(buf, make([]byte, pad)...)

	if err := p.appendLocked(buf); err != nil {
		return [32]byte{}, err
	}

	p.blobIndex[handle] = blobLocation{offset: p.validLen + blobHeaderLen, length: int64(len(payload))}
	p.validLen += recordLen
	return handle, nil
}

// Update performs a branch-head compare-and-swap: if branch's current
// head equals old, it's replaced by new and a branch record is appended;
// otherwise nothing is written and the observed head is returned. old's
// all-zero value denotes "branch previously absent".
func (p *Pile) Update(branch id.Id, old, new [32]byte) (store.UpdateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.branchIndex[branch]
	if current != old {
		return store.UpdateResult{Success: false, Observed: current}, nil
	}

	if p.validLen+branchRecordLen > p.cfg.MaxFileSize {
		return store.UpdateResult{}, &Error{Code: FileTooLarge, Msg: "pile: update would exceed max_file_size"}
	}

	hdr := encodeBranchHeader(branchHeader{
		Timestamp: uint64(time.Now().UnixMilli()),
		BranchID:  branch,
		OldHandle: old,
		NewHandle: new,
	})
	if err := p.appendLocked(hdr[:]); err != nil {
		return store.UpdateResult{}, err
	}

	p.branchIndex[branch] = new
	p.validLen += branchRecordLen
	return store.UpdateResult{Success: true}, nil
}

// appendLocked writes buf at the end of the file and remaps it. Callers
// must hold mu and must have already validated buf's length against
// cfg.MaxFileSize.
func (p *Pile) appendLocked(buf []byte) error {
	if _, err := p.f.WriteAt(buf, p.validLen); err != nil {
		return &Error{Code: IoError, Msg: "pile: append", Err: err}
	}
	if err := p.remapLocked(); err != nil {
		return &Error{Code: IoError, Msg: "pile: remap after append", Err: err}
	}
	return nil
}

// Flush forces the OS page cache to disk.
func (p *Pile) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.f.Sync(); err != nil {
		return &Error{Code: IoError, Msg: "pile: flush", Err: err}
	}
	return nil
}

// Close flushes and releases the mmap and underlying file handle.
func (p *Pile) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if syncErr := p.f.Sync(); syncErr != nil {
		err = syncErr
	}
	if p.data != nil {
		if unmapErr := p.data.Unmap(); unmapErr != nil && err == nil {
			err = unmapErr
		}
		p.data = nil
	}
	if closeErr := p.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return &Error{Code: IoError, Msg: "pile: close", Err: err}
	}
	return nil
}
