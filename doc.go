// Package blobnet implements the client side of a content-addressed,
// chunk-based blob storage network.
//
// A blob (an arbitrarily sized sequence of bytes) is never stored
// whole. It is split by self-encryption (see the selfenc subpackage)
// into encrypted chunks, each addressed by the hash of its own
// content. The metadata needed to reassemble the blob is itself
// serialized into a "head chunk" whose address, combined with a
// namespace scope, forms the blob's address.
//
// Content addressing makes writes idempotent: storing identical bytes
// under the same scope and owner key always yields the same address,
// so a failed or repeated write can simply be reissued.
//
// A blob address is either Public or Private. Public head chunks are
// stored in the clear; Private head chunks are sealed with the owning
// client's key, so only the owner can recover the chunk layout, and
// thus the blob, even though every chunk is publicly fetchable.
//
// This package holds the pure value types: ContentHash, Chunk, Scope,
// and BlobAddress. The client subpackage drives reads and writes, the
// selfenc subpackage implements self-encryption, and the chunkstore
// subpackage defines the chunk-transport interface along with several
// implementations.
package blobnet
