// Package logging implements a chunk store that delegates everything
// to a nested store, logging operations as they happen.
package logging

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

var _ chunkstore.Store = &Store{}

type Store struct {
	s   chunkstore.Store
	log *zap.Logger
}

func New(s chunkstore.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{s: s, log: log}
}

func (s *Store) FetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	chunk, err := s.s.FetchChunk(ctx, hash)
	if err != nil {
		s.log.Warn("fetch chunk", zap.Stringer("chunk", hash), zap.Error(err))
	} else {
		s.log.Debug("fetch chunk", zap.Stringer("chunk", hash), zap.Int("size", len(chunk.Payload)))
	}
	return chunk, err
}

func (s *Store) StoreChunk(ctx context.Context, chunk blobnet.Chunk) error {
	err := s.s.StoreChunk(ctx, chunk)
	if err != nil {
		s.log.Warn("store chunk", zap.Stringer("chunk", chunk.Address), zap.Error(err))
	} else {
		s.log.Debug("store chunk", zap.Stringer("chunk", chunk.Address), zap.Int("size", len(chunk.Payload)))
	}
	return err
}

func init() {
	chunkstore.Register("logging", func(ctx context.Context, conf map[string]interface{}) (chunkstore.Store, error) {
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
		log, _ := zap.NewProduction()
		return New(nestedStore, log), nil
	})
}
