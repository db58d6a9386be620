package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

// gateway is a minimal in-memory chunk gateway.
type gateway struct {
	mu     sync.Mutex
	chunks map[string][]byte
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/chunks/")

	switch r.Method {
	case http.MethodGet:
		g.mu.Lock()
		payload, ok := g.chunks[key]
		g.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)

	case http.MethodPut:
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g.mu.Lock()
		g.chunks[key] = payload
		g.mu.Unlock()
		w.WriteHeader(http.StatusCreated)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func newTestGateway(t *testing.T) (*gateway, *Store) {
	t.Helper()

	g := &gateway{chunks: make(map[string][]byte)}
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	s, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return g, s
}

func TestStoreFetch(t *testing.T) {
	ctx := context.Background()
	_, s := newTestGateway(t)

	chunk := blobnet.NewChunk([]byte("gateway chunk"))

	_, err := s.FetchChunk(ctx, chunk.Address)
	require.ErrorIs(t, err, chunkstore.ErrNotFound)

	require.NoError(t, s.StoreChunk(ctx, chunk))

	got, err := s.FetchChunk(ctx, chunk.Address)
	require.NoError(t, err)
	require.Equal(t, chunk, got)
}

func TestFetchMismatchedContent(t *testing.T) {
	ctx := context.Background()
	g, s := newTestGateway(t)

	// the gateway lies: the stored bytes do not hash to the address
	hash := blobnet.HashBytes([]byte("advertised content"))
	g.chunks[hash.String()] = []byte("actual content")

	_, err := s.FetchChunk(ctx, hash)
	require.ErrorIs(t, err, chunkstore.ErrUnexpectedResponse)
}

func TestUnexpectedStatus(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	s, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	chunk := blobnet.NewChunk([]byte("chunk"))
	_, err = s.FetchChunk(ctx, chunk.Address)
	require.ErrorIs(t, err, chunkstore.ErrUnexpectedResponse)
	require.ErrorIs(t, s.StoreChunk(ctx, chunk), chunkstore.ErrUnexpectedResponse)
}
