// Package hashschema implements the Hash<H> value schema: a 32-byte
// content hash tagged by hash protocol H, independent of any blob
// schema. Handle<H,S> (value/schema/handle) layers a blob schema on top of
// this for content-addressed blob handles specifically.
package hashschema

import "trible.dev/space/value"

// HashProtocol constrains H exactly as value/schema/handle.HashProtocol
// does; duplicated here rather than imported to keep this package
// import-cycle-free from blob (Hash<H> predates and doesn't require a blob
// schema).
type HashProtocol interface {
	value.Schema
	Sum(data []byte) [32]byte
	Name() string
}

// Hash is the schema marker type for Value<Hash<H>>.
type Hash[H HashProtocol] struct{}

// SchemaID implements value.Schema.
func (Hash[H]) SchemaID() [16]byte {
	var h H
	return h.SchemaID()
}

// Of computes the Value<Hash<H>> of data under hash protocol H.
func Of[H HashProtocol](data []byte) value.Value[Hash[H]] {
	var h H
	return value.FromRawBytes[Hash[H]](h.Sum(data))
}
