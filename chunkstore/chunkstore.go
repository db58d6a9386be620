// Package chunkstore describes the chunk transport consumed by the
// blob client: content-addressed get and put of opaque chunks.
package chunkstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
)

// Store is a chunk store. Implementations must be safe for use by
// many goroutines simultaneously: the client fans chunk operations
// out over a single shared Store handle with no external locking.
type Store interface {
	// FetchChunk gets a chunk by its content address.
	FetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error)

	// StoreChunk adds a chunk. Storing identical content twice is a
	// no-op: the chunk's address is derived from its content.
	StoreChunk(ctx context.Context, chunk blobnet.Chunk) error
}

// Lister is implemented by stores that can enumerate their chunks.
type Lister interface {
	// ListChunks calls f for each chunk address in the store in
	// lexicographic order, beginning with the first address after
	// start. If f returns an error, ListChunks exits with that error.
	ListChunks(ctx context.Context, start blobnet.ContentHash, f func(blobnet.ContentHash) error) error
}

// ErrNotFound is the error returned when fetching a non-existent chunk.
var ErrNotFound = errors.New("chunk not found")

// ErrUnexpectedResponse is the error returned when a store's backing
// transport answers with something other than the requested chunk.
var ErrUnexpectedResponse = errors.New("unexpected response")
