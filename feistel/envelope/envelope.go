package envelope

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/dspruth/feistel-edu/feistel"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrFrameTooShort       = errors.New("envelope: frame too short")
	ErrBadMagic            = errors.New("envelope: invalid frame magic")
	ErrUnsupportedVersion  = errors.New("envelope: unsupported frame version")
	ErrBlockSizeMismatch   = errors.New("envelope: block size does not match cipher")
	ErrRoundsMismatch      = errors.New("envelope: round count does not match cipher")
	ErrCorruptFrame        = errors.New("envelope: corrupt frame")
	ErrFrameTooLarge       = errors.New("envelope: frame exceeds maximum size")
	ErrDecompressionFailed = errors.New("envelope: decompression failed")
)

const (
	// Magic identifies a sealed frame ("FSTL").
	Magic = uint32(0x4653544C)
	// Version is the only frame version this package writes.
	Version = 1
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 4 + 1 + 1 + 4 + 4 + 8
	// MaxFrameSize bounds frames read from streams (64 MiB).
	MaxFrameSize = 64 * 1024 * 1024

	flagCompressed = 1 << 0
)

// Options controls Seal.
type Options struct {
	Compress bool             // try LZ4 before the transform
	Level    CompressionLevel // used when Compress is set
}

// DefaultOptions compresses with the fast level.
func DefaultOptions() Options {
	return Options{
		Compress: true,
		Level:    CompressionFast,
	}
}

// Header is the decoded fixed part of a frame.
type Header struct {
	Version    uint8
	Compressed bool
	Rounds     uint32
	BlockSize  uint32
	Length     uint64 // payload length before padding
}

// ParseHeader decodes and sanity-checks the header of frame.
// Format:
//
//	4 bytes: magic
//	1 byte: version
//	1 byte: flags
//	4 bytes: rounds
//	4 bytes: block size
//	8 bytes: payload length before padding
//	N bytes: transformed payload
func ParseHeader(frame []byte) (Header, error) {
	if len(frame) < HeaderSize {
		return Header{}, ErrFrameTooShort
	}
	if binary.BigEndian.Uint32(frame[0:4]) != Magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version:    frame[4],
		Compressed: frame[5]&flagCompressed != 0,
		Rounds:     binary.BigEndian.Uint32(frame[6:10]),
		BlockSize:  binary.BigEndian.Uint32(frame[10:14]),
		Length:     binary.BigEndian.Uint64(frame[14:22]),
	}
	if h.Version != Version {
		return Header{}, pkgerrors.Wrapf(ErrUnsupportedVersion, "version %d", h.Version)
	}
	if h.BlockSize == 0 || h.BlockSize%2 != 0 {
		return Header{}, pkgerrors.Wrapf(ErrCorruptFrame, "block size %d", h.BlockSize)
	}
	body := uint64(len(frame) - HeaderSize)
	if body%uint64(h.BlockSize) != 0 {
		return Header{}, pkgerrors.Wrapf(ErrCorruptFrame, "body of %d bytes is not block aligned", body)
	}
	if h.Length > body || body-h.Length >= uint64(h.BlockSize) {
		return Header{}, pkgerrors.Wrapf(ErrCorruptFrame, "length %d does not fit body of %d bytes", h.Length, body)
	}
	return h, nil
}

// Seal transforms plaintext with c and returns a frame that Open can reverse exactly.
// Blocks are processed with c.TransformContext.
func Seal(ctx context.Context, c *feistel.Cipher, plaintext []byte, opts Options) ([]byte, error) {
	payload := plaintext
	var flags byte
	if opts.Compress && len(plaintext) > 0 {
		z, err := compress(plaintext, opts.Level)
		if err != nil {
			return nil, err
		}
		if len(z) < len(plaintext) {
			payload = z
			flags |= flagCompressed
		}
	}

	body, err := c.TransformContext(ctx, payload, feistel.Encrypt)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(frame[0:4], Magic)
	frame[4] = Version
	frame[5] = flags
	binary.BigEndian.PutUint32(frame[6:10], c.Rounds())
	binary.BigEndian.PutUint32(frame[10:14], uint32(c.BlockSize()))
	binary.BigEndian.PutUint64(frame[14:22], uint64(len(payload)))
	copy(frame[HeaderSize:], body)
	return frame, nil
}

// Open reverses Seal. The cipher must have the same block size and round count
// the frame was sealed with. Nothing authenticates the payload: a wrong key
// yields garbage, or ErrDecompressionFailed if the payload was compressed.
func Open(ctx context.Context, c *feistel.Cipher, frame []byte) ([]byte, error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, err
	}
	if int(h.BlockSize) != c.BlockSize() {
		return nil, pkgerrors.Wrapf(ErrBlockSizeMismatch, "frame %d, cipher %d", h.BlockSize, c.BlockSize())
	}
	if h.Rounds != c.Rounds() {
		return nil, pkgerrors.Wrapf(ErrRoundsMismatch, "frame %d, cipher %d", h.Rounds, c.Rounds())
	}

	plain, err := c.TransformContext(ctx, frame[HeaderSize:], feistel.Decrypt)
	if err != nil {
		return nil, err
	}
	plain = plain[:h.Length]
	if !h.Compressed {
		return plain, nil
	}
	return decompress(plain, MaxFrameSize)
}
