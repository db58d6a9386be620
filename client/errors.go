package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoOwnerKey is returned when a private-scope operation is
// attempted on a client constructed without WithOwnerKey.
var ErrNoOwnerKey = errors.New("client has no owner key for private blobs")

// ErrIndirectionTooDeep is returned when resolving a head chunk
// exceeds the client's indirection depth limit.
var ErrIndirectionTooDeep = errors.New("head chunk indirection too deep")

// ErrUnexpectedResponse is returned when the network answers a chunk
// fetch with content that does not hash to the requested address.
var ErrUnexpectedResponse = errors.New("fetched chunk does not match its address")

// NotEnoughChunksError is returned when a read could not retrieve
// every chunk it set out to retrieve. No partial result is ever
// returned alongside it; the whole operation is safe to retry.
type NotEnoughChunksError struct {
	Expected int
	Actual   int
}

func (e *NotEnoughChunksError) Error() string {
	return fmt.Sprintf("not enough chunks: got %d of %d", e.Actual, e.Expected)
}
