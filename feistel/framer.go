package feistel

import (
	"bytes"
	"iter"
)

// PaddedLen returns the smallest multiple of blockSize that is >= n.
func PaddedLen(n, blockSize int) int {
	if blockSize <= 0 {
		panic("feistel: block size must be positive")
	}
	return (n + blockSize - 1) / blockSize * blockSize
}

// Blocks lazily frames data into blockSize chunks, yielding each with its index.
// Full blocks alias data; the final short block is a zero-padded copy.
// data is never modified.
func Blocks(data []byte, blockSize int) iter.Seq2[int, []byte] {
	if blockSize <= 0 {
		panic("feistel: block size must be positive")
	}
	return func(yield func(int, []byte) bool) {
		for i, off := 0, 0; off < len(data); i, off = i+1, off+blockSize {
			end := off + blockSize
			var block []byte
			if end <= len(data) {
				block = data[off:end:end]
			} else {
				block = make([]byte, blockSize)
				copy(block, data[off:])
			}
			if !yield(i, block) {
				return
			}
		}
	}
}

// TrimPadding strips trailing zero bytes. It cannot tell padding from
// plaintext that itself ends in zeros; use package envelope when that matters.
func TrimPadding(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}
