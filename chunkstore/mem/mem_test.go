package mem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

func TestStoreFetch(t *testing.T) {
	ctx := context.Background()
	s := New()

	chunk := blobnet.NewChunk([]byte("some chunk"))

	_, err := s.FetchChunk(ctx, chunk.Address)
	require.ErrorIs(t, err, chunkstore.ErrNotFound)

	require.NoError(t, s.StoreChunk(ctx, chunk))
	require.NoError(t, s.StoreChunk(ctx, chunk)) // idempotent
	require.Equal(t, 1, s.Len())

	got, err := s.FetchChunk(ctx, chunk.Address)
	require.NoError(t, err)
	require.Equal(t, chunk, got)

	s.Delete(chunk.Address)
	_, err = s.FetchChunk(ctx, chunk.Address)
	require.ErrorIs(t, err, chunkstore.ErrNotFound)
}

func TestListChunks(t *testing.T) {
	ctx := context.Background()
	s := New()

	payloads := []string{"one", "two", "three", "four"}
	for _, p := range payloads {
		require.NoError(t, s.StoreChunk(ctx, blobnet.NewChunk([]byte(p))))
	}

	var got []blobnet.ContentHash
	err := s.ListChunks(ctx, blobnet.ZeroHash, func(h blobnet.ContentHash) error {
		got = append(got, h)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(payloads))
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Less(got[i]))
	}

	// resume after the first address
	var rest []blobnet.ContentHash
	err = s.ListChunks(ctx, got[0], func(h blobnet.ContentHash) error {
		rest = append(rest, h)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, got[1:], rest)
}
