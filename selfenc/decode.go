package selfenc

import (
	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
)

// ErrOutOfRange is returned when a requested byte range extends past
// the end of the encoded data.
var ErrOutOfRange = errors.New("byte range out of bounds")

// DecodeFull decrypts and reassembles the complete original byte
// sequence. It requires every chunk named by the DataMap; chunks may
// be supplied in any order. Each decrypted chunk is verified against
// its source hash, so corrupt or substituted chunk content fails the
// whole decode rather than producing garbled output.
func DecodeFull(m DataMap, chunks []EncryptedChunk) ([]byte, error) {
	byIndex := make(map[int][]byte, len(chunks))
	for _, c := range chunks {
		byIndex[c.Index] = c.Content
	}

	out := make([]byte, 0, m.FileSize())
	for i := range m.Keys {
		content, ok := byIndex[i]
		if !ok {
			return nil, errors.Errorf("missing chunk %d of %d", i, len(m.Keys))
		}
		plain, err := decodeChunk(m.Keys, i, content)
		if err != nil {
			return nil, err
		}
		out = append(out, plain...)
	}
	return out, nil
}

// DecodeRange decrypts a contiguous sub-range of chunks (as named by
// Seek) and returns exactly length bytes starting at relativeOffset
// within the range's first chunk.
func DecodeRange(m DataMap, chunks []EncryptedChunk, relativeOffset, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}

	byIndex := make(map[int][]byte, len(chunks))
	first := -1
	for _, c := range chunks {
		byIndex[c.Index] = c.Content
		if first < 0 || c.Index < first {
			first = c.Index
		}
	}
	if first < 0 {
		return nil, errors.New("no chunks supplied")
	}

	var buf []byte
	for i := first; i < first+len(byIndex); i++ {
		content, ok := byIndex[i]
		if !ok {
			return nil, errors.Errorf("chunk range is not contiguous: missing chunk %d", i)
		}
		if i >= len(m.Keys) {
			return nil, errors.Errorf("chunk %d is outside the data map", i)
		}
		plain, err := decodeChunk(m.Keys, i, content)
		if err != nil {
			return nil, err
		}
		buf = append(buf, plain...)
	}

	if relativeOffset < 0 || relativeOffset+length > len(buf) {
		return nil, errors.Wrapf(ErrOutOfRange, "%d bytes at offset %d of a %d-byte chunk range", length, relativeOffset, len(buf))
	}
	return buf[relativeOffset : relativeOffset+length], nil
}

func decodeChunk(keys []ChunkKey, i int, content []byte) ([]byte, error) {
	plain := transform(seedFor(keys, i), content)
	if blobnet.HashBytes(plain) != keys[i].SrcHash {
		return nil, errors.Errorf("chunk %d decrypted to unexpected content", i)
	}
	return plain, nil
}
