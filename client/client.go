// Package client reads and writes blobs on a content-addressed chunk
// network.
//
// Writing splits a blob into self-encrypted chunks, stores them all
// concurrently, and returns the blob's content-derived address.
// Reading fetches the head chunk, resolves indirection levels to
// recover the chunk layout, fetches the data chunks concurrently, and
// decodes them. Both full and ranged reads are supported.
//
// A Client is an immutable handle and is safe for use by many
// goroutines simultaneously; the chunk store it wraps carries its own
// synchronization.
package client

import (
	"go.uber.org/zap"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
	"github.com/vaultic/blobnet/crypt"
	"github.com/vaultic/blobnet/selfenc"
)

const (
	// DefaultMaxIndirectionDepth bounds how many indirection levels the
	// head-chunk resolver will unwrap. Indirection metadata comes off
	// the network, so the loop must not be driven open-ended by
	// untrusted data.
	DefaultMaxIndirectionDepth = 16

	// DefaultConcurrency bounds the fan-out of concurrent chunk
	// fetches and stores.
	DefaultConcurrency = 64
)

// Client is a handle for blob operations against a chunk store.
type Client struct {
	store        chunkstore.Store
	sealer       crypt.Sealer // nil without an owner key
	log          *zap.Logger
	maxDepth     int
	concurrency  int
	maxChunkSize int
}

// Option configures a Client.
type Option func(*Client)

// WithOwnerKey gives the client an owner key, enabling private-scope
// blobs. The same key must be used to read a private blob as was used
// to write it.
func WithOwnerKey(key [crypt.KeySize]byte) Option {
	return func(c *Client) { c.sealer = crypt.NewSealer(key) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxIndirectionDepth overrides DefaultMaxIndirectionDepth.
func WithMaxIndirectionDepth(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMaxChunkSize sets the network's chunk size ceiling. It bounds
// both the chunks produced by self-encryption and the size at which a
// head chunk spills into an additional indirection level. The ceiling
// must be at least selfenc.MinEncryptableBytes: a head payload that
// spills is re-self-encrypted, and anything over the ceiling must
// itself be large enough to encode. Smaller values are ignored.
func WithMaxChunkSize(n int) Option {
	return func(c *Client) {
		if n >= selfenc.MinEncryptableBytes {
			c.maxChunkSize = n
		}
	}
}

// New produces a Client reading and writing chunks through store.
func New(store chunkstore.Store, opts ...Option) *Client {
	c := &Client{
		store:        store,
		log:          zap.NewNop(),
		maxDepth:     DefaultMaxIndirectionDepth,
		concurrency:  DefaultConcurrency,
		maxChunkSize: selfenc.DefaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sealerFor gives the transformation for head-chunk payloads in the
// given scope: the owner sealer for private, none for public.
func (c *Client) sealerFor(scope blobnet.Scope) (crypt.Sealer, error) {
	if scope == blobnet.ScopePublic {
		return nil, nil
	}
	if c.sealer == nil {
		return nil, ErrNoOwnerKey
	}
	return c.sealer, nil
}
