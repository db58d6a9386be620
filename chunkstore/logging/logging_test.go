package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
	"github.com/vaultic/blobnet/chunkstore/mem"
)

func TestDelegation(t *testing.T) {
	ctx := context.Background()
	s := New(mem.New(), zaptest.NewLogger(t))

	chunk := blobnet.NewChunk([]byte("logged chunk"))

	_, err := s.FetchChunk(ctx, chunk.Address)
	require.ErrorIs(t, err, chunkstore.ErrNotFound)

	require.NoError(t, s.StoreChunk(ctx, chunk))

	got, err := s.FetchChunk(ctx, chunk.Address)
	require.NoError(t, err)
	require.Equal(t, chunk, got)
}

func TestNilLogger(t *testing.T) {
	ctx := context.Background()
	s := New(mem.New(), nil)
	require.NoError(t, s.StoreChunk(ctx, blobnet.NewChunk([]byte("chunk"))))
}
