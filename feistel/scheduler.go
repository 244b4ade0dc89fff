package feistel

import (
	"fmt"
	"iter"
)

// RoundOrder yields round indices 0..rounds-1 for Encrypt and rounds-1..0 for
// Decrypt. It is the only place the two directions differ. Any other mode panics.
func RoundOrder(rounds uint32, mode Mode) iter.Seq[uint32] {
	switch mode {
	case Encrypt:
	case Decrypt:
		return func(yield func(uint32) bool) {
			for i := rounds; i > 0; i-- {
				if !yield(i - 1) {
					return
				}
			}
		}
	default:
		panic(fmt.Sprintf("feistel: unknown mode %d", uint8(mode)))
	}
	return func(yield func(uint32) bool) {
		for i := uint32(0); i < rounds; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// scratch holds the per-block working buffers. One scratch must not be
// shared between goroutines.
type scratch struct {
	l, r, f []byte
}

func (c *Cipher) newScratch() *scratch {
	k := len(c.key)
	return &scratch{
		l: make([]byte, k),
		r: make([]byte, k),
		f: make([]byte, k),
	}
}

// processBlock runs all rounds over one framed block and writes L || R to dst.
func (c *Cipher) processBlock(dst, block []byte, order iter.Seq[uint32], s *scratch) {
	k := len(c.key)
	l, r := s.l, s.r
	copy(l, block[:k])
	copy(r, block[k:])

	for i := range order {
		c.f(s.f, r, c.roundKey(i))
		xorInto(l, s.f)
		l, r = r, l
	}
	// Undo the last round's swap so the reverse order inverts the transform.
	l, r = r, l

	copy(dst[:k], l)
	copy(dst[k:], r)
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
