// Package handle implements the Handle<H,S> value schema: a 32-byte
// content hash of a Blob[S] under hash protocol H, typed
// by both the hash protocol and the blob schema so a Handle[Blake3,
// SimpleArchive] can never be confused with a Handle[SHA3256, LongString].
package handle

import (
	"trible.dev/space/blob"
	"trible.dev/space/value"
)

// HashProtocol constrains H: it must be both a value.Schema (so Handle[H,S]
// itself can report a schema Id that encodes which hash protocol it uses)
// and a usable, stateless hash function. hash.SHA3256 and hash.Blake3
// satisfy this directly since they're zero-sized and implement both
// value.Schema.SchemaID and hash.Protocol's methods structurally.
type HashProtocol interface {
	value.Schema
	Sum(data []byte) [32]byte
	Name() string
}

// Handle is the schema marker type for Value<Handle<H,S>>.
type Handle[H HashProtocol, S blob.Schema] struct{}

// SchemaID implements value.Schema. It folds both the hash protocol's and
// the blob schema's ids together so distinct (H,S) pairs get distinct
// schema identifiers.
func (Handle[H, S]) SchemaID() [16]byte {
	var h H
	var s S
	hID := h.SchemaID()
	sID := s.SchemaID()
	var out [16]byte
	for i := range out {
		out[i] = hID[i] ^ sID[i]
	}
	return out
}

// Of computes the handle of b under hash protocol H: Value<Handle<H,S>> =
// H(bytes). Handle equality implies blob equality under H's
// collision-resistance assumption.
func Of[H HashProtocol, S blob.Schema](b blob.Blob[S]) value.Value[Handle[H, S]] {
	var h H
	return value.FromRawBytes[Handle[H, S]](blob.Handle(h, b))
}
