package selfenc

import "github.com/pkg/errors"

// SeekInfo names the chunks covering a byte range of the original
// data: the inclusive chunk index range, and the offset of the range's
// first byte within the Start chunk.
type SeekInfo struct {
	Start          int
	End            int
	RelativeOffset int
}

// Seek computes which chunks must be fetched to read length bytes
// starting at pos. length must be positive, and the range must lie
// entirely within the encoded data; otherwise Seek fails with
// ErrOutOfRange.
func Seek(m DataMap, pos, length int) (SeekInfo, error) {
	if pos < 0 || length <= 0 {
		return SeekInfo{}, errors.Wrapf(ErrOutOfRange, "position %d, length %d", pos, length)
	}
	if size := m.FileSize(); pos+length > size {
		return SeekInfo{}, errors.Wrapf(ErrOutOfRange, "%d bytes at position %d of a %d-byte blob", length, pos, size)
	}

	var (
		info   = SeekInfo{Start: -1}
		last   = pos + length - 1
		offset int
	)
	for i, key := range m.Keys {
		next := offset + key.SrcSize
		if info.Start < 0 && pos < next {
			info.Start = i
			info.RelativeOffset = pos - offset
		}
		if last < next {
			info.End = i
			return info, nil
		}
		offset = next
	}

	// unreachable while FileSize is the sum of the key sizes
	return SeekInfo{}, errors.Wrap(ErrOutOfRange, "inconsistent data map")
}
