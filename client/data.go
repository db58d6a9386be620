package client

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/crypt"
	"github.com/vaultic/blobnet/selfenc"
)

// A head chunk's payload, once unsealed, is a secret key: a data map
// tagged with its indirection level. A first-level key maps directly
// to the blob's data chunks. An additional-level key maps to chunks
// that decode to the serialized bytes of another head chunk, which
// must be unwrapped again, like the indirect block pointers of a
// classic filesystem.
const (
	firstLevel uint8 = iota
	additionalLevel
)

// secretKeyWire is the on-wire form of a secret key: a fixed-position
// CBOR array [level, datamap]. This encoding must stay stable across
// implementations; head chunks written by one client are read by
// others.
type secretKeyWire struct {
	_     struct{} `cbor:",toarray"`
	Level uint8
	Map   selfenc.DataMap
}

// encMode encodes with Core Deterministic Encoding (RFC 8949 §4.2):
// identical logical values always serialize to identical bytes.
// Content addressing depends on this; a nondeterministic encoder
// would give the same blob a different address on every write.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("client: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("client: CBOR decoder initialization failed: " + err.Error())
	}
}

// packBlob self-encrypts data and builds its head chunk, returning the
// blob's address and the complete chunk set to store (data chunks of
// every level, head chunk last).
//
// The secret key describing the data chunks is serialized, sealed when
// the scope is private, and becomes the head chunk payload. If that
// payload exceeds the chunk size ceiling, the serialized head chunk is
// itself self-encrypted and the new data map wrapped as an
// additional-level key; the loop repeats until the head fits. Every
// level's payload is sealed for private blobs, so no indirection level
// leaks the chunk layout.
func (c *Client) packBlob(data []byte, scope blobnet.Scope, sealer crypt.Sealer) (blobnet.BlobAddress, []blobnet.Chunk, error) {
	dataMap, chunks, err := selfenc.Encode(data, selfenc.WithMaxChunkSize(c.maxChunkSize))
	if err != nil {
		return blobnet.BlobAddress{}, nil, errors.Wrap(err, "self-encrypting blob")
	}

	key := secretKeyWire{Level: firstLevel, Map: dataMap}
	for {
		payload, err := encMode.Marshal(key)
		if err != nil {
			return blobnet.BlobAddress{}, nil, errors.Wrap(err, "serializing secret key")
		}
		if sealer != nil {
			payload, err = sealer.Seal(payload)
			if err != nil {
				return blobnet.BlobAddress{}, nil, errors.Wrap(err, "sealing head chunk")
			}
		}

		head := blobnet.NewChunk(payload)
		if len(payload) <= c.maxChunkSize {
			return blobnet.NewBlobAddress(scope, head.Address), append(chunks, head), nil
		}

		serialized, err := encMode.Marshal(head)
		if err != nil {
			return blobnet.BlobAddress{}, nil, errors.Wrap(err, "serializing oversized head chunk")
		}
		nextMap, more, err := selfenc.Encode(serialized, selfenc.WithMaxChunkSize(c.maxChunkSize))
		if err != nil {
			return blobnet.BlobAddress{}, nil, errors.Wrap(err, "self-encrypting head chunk")
		}
		chunks = append(chunks, more...)
		key = secretKeyWire{Level: additionalLevel, Map: nextMap}
	}
}
