package blobnet

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// HashSize is the size of a ContentHash in bytes.
const HashSize = sha256.Size

// ContentHash is the address of a chunk: the sha256 hash of its content.
type ContentHash [HashSize]byte

// ZeroHash is the zero value of a ContentHash.
var ZeroHash ContentHash

// HashBytes computes the ContentHash of a byte sequence.
func HashBytes(b []byte) ContentHash {
	return sha256.Sum256(b)
}

func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h ContentHash) Less(other ContentHash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

func (h ContentHash) IsZero() bool {
	return h == ZeroHash
}

func (h *ContentHash) FromHex(s string) error {
	if len(s) != 2*HashSize {
		return errors.New("wrong length")
	}
	_, err := hex.Decode(h[:], []byte(s))
	return err
}

func HashFromHex(s string) (ContentHash, error) {
	var out ContentHash
	err := out.FromHex(s)
	return out, err
}

func HashFromBytes(b []byte) ContentHash {
	var out ContentHash
	copy(out[:], b)
	return out
}

// MarshalCBOR encodes the hash as a CBOR byte string,
// rather than the array of integers a [32]byte would otherwise become.
func (h ContentHash) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(h[:])
}

// UnmarshalCBOR decodes a CBOR byte string into the hash.
func (h *ContentHash) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) != HashSize {
		return errors.Errorf("content hash is %d bytes, want %d", len(b), HashSize)
	}
	copy(h[:], b)
	return nil
}

// Chunk is the atomic stored unit of the network:
// an opaque payload addressed by the hash of its content.
// Chunks serialize as fixed-position CBOR arrays.
type Chunk struct {
	_       struct{} `cbor:",toarray"`
	Address ContentHash
	Payload []byte
}

// NewChunk produces a Chunk for the given payload,
// computing its content address.
func NewChunk(payload []byte) Chunk {
	return Chunk{Address: HashBytes(payload), Payload: payload}
}
