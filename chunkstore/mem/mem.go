// Package mem implements an in-memory chunk store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

var _ chunkstore.Store = &Store{}
var _ chunkstore.Lister = &Store{}

// Store is a memory-based chunk store.
// It is internally synchronized and safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	chunks map[blobnet.ContentHash][]byte
}

// New produces a new Store.
func New() *Store {
	return &Store{chunks: make(map[blobnet.ContentHash][]byte)}
}

// FetchChunk gets the chunk with the given content address.
func (s *Store) FetchChunk(_ context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payload, ok := s.chunks[hash]; ok {
		return blobnet.Chunk{Address: hash, Payload: payload}, nil
	}
	return blobnet.Chunk{}, chunkstore.ErrNotFound
}

// StoreChunk adds a chunk to the store if it wasn't already present.
func (s *Store) StoreChunk(_ context.Context, chunk blobnet.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chunks[chunk.Address]; !ok {
		s.chunks[chunk.Address] = chunk.Payload
	}
	return nil
}

// Delete removes a chunk from the store, if present.
func (s *Store) Delete(hash blobnet.ContentHash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chunks, hash)
}

// Len is the number of chunks in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.chunks)
}

// ListChunks produces all chunk addresses in the store, in lexicographic order.
func (s *Store) ListChunks(_ context.Context, start blobnet.ContentHash, f func(blobnet.ContentHash) error) error {
	s.mu.Lock()
	hashes := make([]blobnet.ContentHash, 0, len(s.chunks))
	for hash := range s.chunks {
		hashes = append(hashes, hash)
	}
	s.mu.Unlock()

	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(hashes[j]) })
	index := sort.Search(len(hashes), func(n int) bool {
		return start.Less(hashes[n])
	})

	for i := index; i < len(hashes); i++ {
		err := f(hashes[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	chunkstore.Register("mem", func(context.Context, map[string]interface{}) (chunkstore.Store, error) {
		return New(), nil
	})
}
