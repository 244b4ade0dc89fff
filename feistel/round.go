package feistel

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// RoundFunc writes F(half, roundKey) into dst. All three slices have the same length.
// It must be deterministic; it does not need to be invertible.
type RoundFunc func(dst, half, roundKey []byte)

// Mix is the reference round function: dst[i] = (half[i] + 1) ^ roundKey[i], wrapping at 256.
func Mix(dst, half, roundKey []byte) {
	for i, b := range half {
		dst[i] = (b + 1) ^ roundKey[i]
	}
}

// KeySchedule derives the key used in a given round.
// The returned slice must have len(key) bytes and must not be modified later.
type KeySchedule interface {
	RoundKey(key []byte, round uint32) []byte
}

// KeyScheduleFunc adapts a function to KeySchedule.
type KeyScheduleFunc func(key []byte, round uint32) []byte

func (f KeyScheduleFunc) RoundKey(key []byte, round uint32) []byte { return f(key, round) }

// RepeatKey is the reference schedule: the round index is ignored and every
// round uses the key as given.
var RepeatKey KeySchedule = repeatKey{}

type repeatKey struct{}

func (repeatKey) RoundKey(key []byte, _ uint32) []byte { return key }

// hkdfSegment is the most HKDF-SHA256 will expand from one info string.
const hkdfSegment = 255 * sha256.Size

// HKDFSchedule derives a distinct key per round with HKDF-SHA256:
// round i uses HKDF(key, salt, info || BE32(i) || BE32(segment)).
type HKDFSchedule struct {
	salt []byte
	info []byte
}

// NewHKDFSchedule creates an HKDF-based schedule. salt may be nil.
func NewHKDFSchedule(salt, info []byte) *HKDFSchedule {
	return &HKDFSchedule{
		salt: append([]byte(nil), salt...),
		info: append([]byte(nil), info...),
	}
}

func (s *HKDFSchedule) RoundKey(key []byte, round uint32) []byte {
	out := make([]byte, len(key))
	label := make([]byte, len(s.info)+8)
	copy(label, s.info)
	binary.BigEndian.PutUint32(label[len(s.info):], round)

	for seg, off := uint32(0), 0; off < len(out); seg, off = seg+1, off+hkdfSegment {
		end := min(off+hkdfSegment, len(out))
		binary.BigEndian.PutUint32(label[len(s.info)+4:], seg)
		r := hkdf.New(sha256.New, key, s.salt, label)
		if _, err := io.ReadFull(r, out[off:end]); err != nil {
			// unreachable: each segment is within the HKDF output limit
			panic("feistel: hkdf expand: " + err.Error())
		}
	}
	return out
}
