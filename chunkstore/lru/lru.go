// Package lru implements a chunk store that acts as a
// least-recently-used cache in front of a nested chunk store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

var _ chunkstore.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a
// chunk store. Chunk content is immutable, so cached entries never go
// stale. Writes pass through to the nested store.
type Store struct {
	c *lru.Cache[blobnet.ContentHash, []byte]
	s chunkstore.Store
}

// New produces a new Store backed by `s` and caching up to `size` chunks.
func New(s chunkstore.Store, size int) (*Store, error) {
	c, err := lru.New[blobnet.ContentHash, []byte](size)
	return &Store{s: s, c: c}, err
}

// FetchChunk gets the chunk with the given content address,
// from cache when possible.
func (s *Store) FetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	if payload, ok := s.c.Get(hash); ok {
		return blobnet.Chunk{Address: hash, Payload: payload}, nil
	}
	chunk, err := s.s.FetchChunk(ctx, hash)
	if err != nil {
		return blobnet.Chunk{}, err
	}
	s.c.Add(hash, chunk.Payload)
	return chunk, nil
}

// StoreChunk adds a chunk to the nested store and to the cache.
func (s *Store) StoreChunk(ctx context.Context, chunk blobnet.Chunk) error {
	if err := s.s.StoreChunk(ctx, chunk); err != nil {
		return err
	}
	s.c.Add(chunk.Address, chunk.Payload)
	return nil
}

func init() {
	chunkstore.Register("lru", func(ctx context.Context, conf map[string]interface{}) (chunkstore.Store, error) {
		size, ok := conf["size"].(int)
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nested["type"].(string)
		if !ok {
			return nil, errors.New(`"nested" parameter missing "type"`)
		}
		nestedStore, err := chunkstore.Create(ctx, nestedType, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, size)
	})
}
