// Package selfenc implements self-encryption of byte sequences into
// content-addressed encrypted chunks.
//
// Encode splits its input into at least three chunks. Each chunk is
// encrypted with a key derived from the content hashes of the chunk
// and its two circular successors, so the key material for
// reconstruction is derivable from chunk metadata alone: no separate
// key store exists. The metadata is collected in a DataMap, which
// names every chunk's fetch address, source hash, and size. Anyone
// holding the DataMap can reassemble the original bytes; anyone
// without it holds only unrelated-looking encrypted chunks.
//
// Encoding is deterministic: identical input always produces an
// identical DataMap and identical chunks.
package selfenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
)

const (
	// MinChunkSize is the smallest chunk Encode will produce.
	MinChunkSize = 1024

	// DefaultMaxChunkSize is the largest chunk Encode will produce
	// unless overridden with WithMaxChunkSize.
	DefaultMaxChunkSize = 1 << 20

	// MinEncryptableBytes is the smallest input Encode accepts.
	// Below this there is not enough material for three chunks.
	MinEncryptableBytes = 3 * MinChunkSize
)

// ErrTooSmall is returned by Encode when the input is shorter than
// MinEncryptableBytes.
var ErrTooSmall = errors.New("data too small to self-encrypt")

// ChunkKey names one chunk of an encoded blob: where to fetch it
// (DstHash), where it belongs in the original sequence (Index), and
// the hash and size of its decrypted content.
type ChunkKey struct {
	_       struct{} `cbor:",toarray"`
	Index   int
	DstHash blobnet.ContentHash
	SrcHash blobnet.ContentHash
	SrcSize int
}

// DataMap is the ordered set of ChunkKeys describing an encoded blob.
// It is layout metadata, not an identity key: it is reconstructed
// transiently for each read and never persisted by this layer.
type DataMap struct {
	_    struct{} `cbor:",toarray"`
	Keys []ChunkKey
}

// FileSize is the size of the original (decoded) byte sequence.
func (m DataMap) FileSize() int {
	var size int
	for _, k := range m.Keys {
		size += k.SrcSize
	}
	return size
}

// EncryptedChunk pairs a fetched chunk's content with its position in
// the original chunk sequence. Decoding is driven by Index, never by
// the order chunks arrive in.
type EncryptedChunk struct {
	Index   int
	Content []byte
}

// Option configures Encode.
type Option func(*config)

type config struct {
	maxChunkSize int
}

// WithMaxChunkSize caps the size of produced chunks. Small inputs are
// split into equal thirds, so the last chunk may exceed the cap by the
// division remainder (at most 2 bytes). The cap must be at least twice
// MinChunkSize (so the tail chunks can always absorb a short
// remainder); smaller values are ignored.
func WithMaxChunkSize(n int) Option {
	return func(c *config) {
		if n >= 2*MinChunkSize {
			c.maxChunkSize = n
		}
	}
}

// Encode splits data into encrypted, content-addressed chunks and
// returns the DataMap describing them. Inputs shorter than
// MinEncryptableBytes fail with ErrTooSmall.
func Encode(data []byte, opts ...Option) (DataMap, []blobnet.Chunk, error) {
	cfg := config{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	fileSize := len(data)
	if fileSize < MinEncryptableBytes {
		return DataMap{}, nil, errors.Wrapf(ErrTooSmall, "%d bytes, need at least %d", fileSize, MinEncryptableBytes)
	}

	n := numChunks(fileSize, cfg.maxChunkSize)
	var (
		contents  = make([][]byte, n)
		srcHashes = make([]blobnet.ContentHash, n)
	)
	offset := 0
	for i := 0; i < n; i++ {
		size := chunkSize(fileSize, i, cfg.maxChunkSize)
		contents[i] = data[offset : offset+size]
		srcHashes[i] = blobnet.HashBytes(contents[i])
		offset += size
	}

	var (
		keys   = make([]ChunkKey, n)
		chunks = make([]blobnet.Chunk, n)
	)
	for i := range contents {
		chunk := blobnet.NewChunk(transform(chunkSeed(srcHashes, i), contents[i]))
		chunks[i] = chunk
		keys[i] = ChunkKey{
			Index:   i,
			DstHash: chunk.Address,
			SrcHash: srcHashes[i],
			SrcSize: len(contents[i]),
		}
	}

	return DataMap{Keys: keys}, chunks, nil
}

func numChunks(fileSize, maxChunkSize int) int {
	if fileSize < 3*maxChunkSize {
		return 3
	}
	n := fileSize / maxChunkSize
	if fileSize%maxChunkSize != 0 {
		n++
	}
	return n
}

// chunkSize gives the size of chunk `index`. Chunks are equal thirds
// for small files; for large files every chunk is maxChunkSize except
// the last two, which absorb the remainder so that no chunk falls
// below MinChunkSize.
func chunkSize(fileSize, index, maxChunkSize int) int {
	if fileSize < 3*maxChunkSize {
		third := fileSize / 3
		if index < 2 {
			return third
		}
		return fileSize - 2*third
	}

	total := numChunks(fileSize, maxChunkSize)
	if index < total-2 {
		return maxChunkSize
	}

	remainder := fileSize % maxChunkSize
	penultimate := index == total-2
	switch {
	case remainder == 0:
		return maxChunkSize
	case remainder >= MinChunkSize:
		if penultimate {
			return maxChunkSize
		}
		return remainder
	default:
		if penultimate {
			return maxChunkSize - (MinChunkSize - remainder)
		}
		return MinChunkSize
	}
}

// chunkSeed derives the encryption key for chunk i from the source
// hashes of the chunk and its two circular successors.
func chunkSeed(srcHashes []blobnet.ContentHash, i int) [32]byte {
	n := len(srcHashes)
	h := sha256.New()
	h.Write(srcHashes[i][:])
	h.Write(srcHashes[(i+1)%n][:])
	h.Write(srcHashes[(i+2)%n][:])
	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

func seedFor(keys []ChunkKey, i int) [32]byte {
	n := len(keys)
	h := sha256.New()
	h.Write(keys[i].SrcHash[:])
	h.Write(keys[(i+1)%n].SrcHash[:])
	h.Write(keys[(i+2)%n].SrcHash[:])
	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

// transform applies the AES-CTR keystream for seed to src.
// It is its own inverse.
func transform(seed [32]byte, src []byte) []byte {
	block, err := aes.NewCipher(seed[:])
	if err != nil {
		// the key is always 32 bytes
		panic(err)
	}
	ivh := sha256.New()
	ivh.Write(seed[:])
	ivh.Write([]byte("iv"))
	iv := ivh.Sum(nil)

	out := make([]byte, len(src))
	cipher.NewCTR(block, iv[:aes.BlockSize]).XORKeyStream(out, src)
	return out
}
