package client

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/selfenc"
)

// headChunk carries a fetched head chunk together with the blob
// address it was fetched for, threading the address scope into the
// resolver.
type headChunk struct {
	chunk   blobnet.Chunk
	address blobnet.BlobAddress
}

// WriteBlob self-encrypts data and stores all of its chunks,
// returning the blob's address.
//
// Chunk stores are dispatched concurrently and the call returns once
// every dispatch has settled, not once the network confirms
// durability. Individual store errors are logged and discarded:
// writes are best-effort, and content addressing makes reissuing the
// whole write safe and cheap (identical bytes land at the identical
// address). Callers that require durability should read the blob back.
func (c *Client) WriteBlob(ctx context.Context, data []byte, scope blobnet.Scope) (blobnet.BlobAddress, error) {
	sealer, err := c.sealerFor(scope)
	if err != nil {
		return blobnet.BlobAddress{}, err
	}

	address, chunks, err := c.packBlob(data, scope, sealer)
	if err != nil {
		return blobnet.BlobAddress{}, err
	}

	c.log.Debug("writing blob",
		zap.Stringer("address", address),
		zap.Int("size", len(data)),
		zap.Int("chunks", len(chunks)))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			if err := c.store.StoreChunk(ctx, chunk); err != nil {
				c.log.Warn("storing chunk", zap.Stringer("chunk", chunk.Address), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait() // barrier only; store errors were absorbed above

	return address, nil
}

// ReadBlob fetches and reassembles the complete blob at address.
func (c *Client) ReadBlob(ctx context.Context, address blobnet.BlobAddress) ([]byte, error) {
	chunk, err := c.fetchChunk(ctx, address.Name())
	if err != nil {
		return nil, errors.Wrap(err, "fetching head chunk")
	}
	dataMap, err := c.unpackHeadChunk(ctx, headChunk{chunk: chunk, address: address})
	if err != nil {
		return nil, err
	}
	return c.readAll(ctx, dataMap)
}

// ReadBlobFrom fetches and reassembles length bytes of the blob at
// address, starting at position. Position 0 reads from the start.
// Only the chunks covering the requested window are fetched. A window
// extending past the end of the blob fails with selfenc.ErrOutOfRange;
// it is never clamped. A zero-length window succeeds with no bytes and
// no chunk fetches.
func (c *Client) ReadBlobFrom(ctx context.Context, address blobnet.BlobAddress, position, length int) ([]byte, error) {
	c.log.Debug("reading blob range",
		zap.Stringer("address", address),
		zap.Int("position", position),
		zap.Int("length", length))

	chunk, err := c.fetchChunk(ctx, address.Name())
	if err != nil {
		return nil, errors.Wrap(err, "fetching head chunk")
	}
	dataMap, err := c.unpackHeadChunk(ctx, headChunk{chunk: chunk, address: address})
	if err != nil {
		return nil, err
	}
	return c.seek(ctx, dataMap, position, length)
}

// fetchChunk gets one chunk by content address, verifying that the
// returned payload actually hashes to the requested address.
func (c *Client) fetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	chunk, err := c.store.FetchChunk(ctx, hash)
	if err != nil {
		return blobnet.Chunk{}, err
	}
	if blobnet.HashBytes(chunk.Payload) != hash {
		return blobnet.Chunk{}, errors.Wrapf(ErrUnexpectedResponse, "chunk %s", hash)
	}
	return chunk, nil
}

// readAll fetches and decodes the complete chunk set named by dataMap.
func (c *Client) readAll(ctx context.Context, dataMap selfenc.DataMap) ([]byte, error) {
	chunks, err := c.tryGetChunks(ctx, dataMap.Keys)
	if err != nil {
		return nil, err
	}
	data, err := selfenc.DecodeFull(dataMap, chunks)
	return data, errors.Wrap(err, "decoding blob")
}

// seek fetches and decodes only the chunks covering length bytes at
// position.
func (c *Client) seek(ctx context.Context, dataMap selfenc.DataMap, position, length int) ([]byte, error) {
	if length == 0 {
		if position < 0 || position > dataMap.FileSize() {
			return nil, errors.Wrapf(selfenc.ErrOutOfRange, "position %d of a %d-byte blob", position, dataMap.FileSize())
		}
		return nil, nil
	}

	info, err := selfenc.Seek(dataMap, position, length)
	if err != nil {
		return nil, err
	}

	chunks, err := c.tryGetChunks(ctx, dataMap.Keys[info.Start:info.End+1])
	if err != nil {
		return nil, err
	}
	data, err := selfenc.DecodeRange(dataMap, chunks, info.RelativeOffset, length)
	return data, errors.Wrap(err, "decoding blob range")
}

// tryGetChunks fetches the chunks named by keys, one concurrent fetch
// per key, bounded by the client's concurrency limit.
//
// A fetch that errors is logged and recorded as absent rather than
// aborting the batch: the decision is made only after every fetch has
// settled, by comparing the per-key result manifest against the
// request. Anything short of a complete set fails with
// NotEnoughChunksError and no partial result.
func (c *Client) tryGetChunks(ctx context.Context, keys []selfenc.ChunkKey) ([]selfenc.EncryptedChunk, error) {
	results := make([]*selfenc.EncryptedChunk, len(keys))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			chunk, err := c.fetchChunk(ctx, key.DstHash)
			if err != nil {
				c.log.Warn("fetching chunk",
					zap.Stringer("chunk", key.DstHash),
					zap.Int("index", key.Index),
					zap.Error(err))
				return nil // tallied as absent after the barrier
			}
			results[i] = &selfenc.EncryptedChunk{Index: key.Index, Content: chunk.Payload}
			return nil
		})
	}
	_ = g.Wait()

	chunks := make([]selfenc.EncryptedChunk, 0, len(keys))
	for _, r := range results {
		if r != nil {
			chunks = append(chunks, *r)
		}
	}

	if len(chunks) < len(keys) {
		return nil, &NotEnoughChunksError{Expected: len(keys), Actual: len(chunks)}
	}
	return chunks, nil
}

// unpackHeadChunk extracts the first-level data map from a head chunk.
// If the head chunk holds an additional-level key instead, the chunks
// that key names are fetched and decoded into the serialized bytes of
// the next head chunk, and the process repeats until a first-level key
// appears or the depth limit is hit.
//
// The loop is iterative and depth-capped: the level tags come off the
// network, and a crafted or corrupted chunk must not be able to drive
// unbounded work.
func (c *Client) unpackHeadChunk(ctx context.Context, hc headChunk) (selfenc.DataMap, error) {
	chunk := hc.chunk
	for depth := 0; depth < c.maxDepth; depth++ {
		payload := chunk.Payload
		if hc.address.IsPrivate() {
			sealer, err := c.sealerFor(blobnet.ScopePrivate)
			if err != nil {
				return selfenc.DataMap{}, err
			}
			payload, err = sealer.Unseal(payload)
			if err != nil {
				return selfenc.DataMap{}, errors.Wrap(err, "unsealing head chunk")
			}
		}

		var key secretKeyWire
		if err := decMode.Unmarshal(payload, &key); err != nil {
			return selfenc.DataMap{}, errors.Wrap(err, "deserializing secret key")
		}

		switch key.Level {
		case firstLevel:
			return key.Map, nil

		case additionalLevel:
			c.log.Debug("unwrapping indirection level",
				zap.Stringer("address", hc.address),
				zap.Int("depth", depth+1))
			serialized, err := c.readAll(ctx, key.Map)
			if err != nil {
				return selfenc.DataMap{}, err
			}
			var next blobnet.Chunk
			if err := decMode.Unmarshal(serialized, &next); err != nil {
				return selfenc.DataMap{}, errors.Wrap(err, "deserializing indirection chunk")
			}
			chunk = next

		default:
			return selfenc.DataMap{}, errors.Errorf("unknown secret key level %d", key.Level)
		}
	}
	return selfenc.DataMap{}, errors.Wrapf(ErrIndirectionTooDeep, "more than %d levels", c.maxDepth)
}
