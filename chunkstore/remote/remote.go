// Package remote implements a chunk store backed by an HTTP chunk
// gateway. Chunks live at {base}/chunks/{hex-address}; GET fetches
// and PUT stores.
package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

var _ chunkstore.Store = &Store{}

// Store is a chunk store speaking to an HTTP chunk gateway.
type Store struct {
	base   string
	client *http.Client
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New produces a Store talking to the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Store, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parsing gateway URL")
	}
	s := &Store{
		base:   strings.TrimRight(baseURL, "/"),
		client: http.DefaultClient,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) chunkURL(hash blobnet.ContentHash) string {
	return s.base + "/chunks/" + hash.String()
}

// FetchChunk gets a chunk from the gateway. The payload is verified
// against the requested address; a gateway response that hashes to
// anything else fails with chunkstore.ErrUnexpectedResponse.
func (s *Store) FetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.chunkURL(hash), nil)
	if err != nil {
		return blobnet.Chunk{}, errors.Wrap(err, "building request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return blobnet.Chunk{}, errors.Wrap(err, "fetching chunk")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return blobnet.Chunk{}, chunkstore.ErrNotFound
	default:
		return blobnet.Chunk{}, errors.Wrapf(chunkstore.ErrUnexpectedResponse, "status %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return blobnet.Chunk{}, errors.Wrap(err, "reading chunk body")
	}

	if got := blobnet.HashBytes(payload); got != hash {
		s.log.Warn("gateway returned mismatched chunk content",
			zap.Stringer("requested", hash),
			zap.Stringer("got", got))
		return blobnet.Chunk{}, errors.Wrap(chunkstore.ErrUnexpectedResponse, "content does not match address")
	}

	return blobnet.Chunk{Address: hash, Payload: payload}, nil
}

// StoreChunk puts a chunk to the gateway.
func (s *Store) StoreChunk(ctx context.Context, chunk blobnet.Chunk) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.chunkURL(chunk.Address), bytes.NewReader(chunk.Payload))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "storing chunk")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) // drain so the connection can be reused

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return errors.Wrapf(chunkstore.ErrUnexpectedResponse, "status %s", resp.Status)
	}
}

func init() {
	chunkstore.Register("remote", func(_ context.Context, conf map[string]interface{}) (chunkstore.Store, error) {
		baseURL, ok := conf["url"].(string)
		if !ok {
			return nil, errors.New(`missing "url" parameter`)
		}
		return New(baseURL)
	})
}
