package chunkstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
	"github.com/vaultic/blobnet/chunkstore/lru"
	_ "github.com/vaultic/blobnet/chunkstore/mem" // register the mem type
)

func TestCreateMem(t *testing.T) {
	ctx := context.Background()

	s, err := chunkstore.Create(ctx, "mem", nil)
	require.NoError(t, err)

	chunk := blobnet.NewChunk([]byte("registry chunk"))
	require.NoError(t, s.StoreChunk(ctx, chunk))

	got, err := s.FetchChunk(ctx, chunk.Address)
	require.NoError(t, err)
	require.Equal(t, chunk, got)
}

func TestCreateNested(t *testing.T) {
	ctx := context.Background()

	s, err := chunkstore.Create(ctx, "lru", map[string]interface{}{
		"size":   10,
		"nested": map[string]interface{}{"type": "mem"},
	})
	require.NoError(t, err)
	require.IsType(t, &lru.Store{}, s)
}

func TestCreateUnknown(t *testing.T) {
	_, err := chunkstore.Create(context.Background(), "bogus", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown chunk store type")
}

func TestCreateBadConf(t *testing.T) {
	_, err := chunkstore.Create(context.Background(), "lru", map[string]interface{}{})
	require.Error(t, err)
}
