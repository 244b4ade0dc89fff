package shard

import (
	"bytes"
	"errors"

	"github.com/klauspost/reedsolomon"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrInvalidConfig = errors.New("shard: invalid data/parity configuration")
	ErrTooManyLost   = errors.New("shard: too many shards lost, cannot recover")
	ErrShardCount    = errors.New("shard: wrong number of shards")
)

// Set is an erasure-coded frame. Size is the frame length before shard padding.
type Set struct {
	Shards [][]byte
	Size   int
}

// Lost reports how many shards are missing.
func (s *Set) Lost() int {
	n := 0
	for _, sh := range s.Shards {
		if len(sh) == 0 {
			n++
		}
	}
	return n
}

// Codec splits frames into data and parity shards.
type Codec struct {
	enc          reedsolomon.Encoder
	dataShards   int
	parityShards int
}

// NewCodec creates a codec that tolerates the loss of up to parityShards shards.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards <= 0 || parityShards <= 0 {
		return nil, ErrInvalidConfig
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, pkgerrors.Wrap(ErrInvalidConfig, err.Error())
	}
	return &Codec{
		enc:          enc,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

func (c *Codec) DataShards() int   { return c.dataShards }
func (c *Codec) ParityShards() int { return c.parityShards }
func (c *Codec) TotalShards() int  { return c.dataShards + c.parityShards }

// Overhead returns the storage overhead ratio (e.g. 1.4 for 10+4).
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.dataShards)
}

// Split encodes frame into TotalShards shards. frame is not retained.
func (c *Codec) Split(frame []byte) (*Set, error) {
	if len(frame) == 0 {
		return nil, pkgerrors.Wrap(reedsolomon.ErrShortData, "shard: empty frame")
	}
	// Split may reuse the input's capacity.
	shards, err := c.enc.Split(bytes.Clone(frame))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "shard: split")
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, pkgerrors.Wrap(err, "shard: encode")
	}
	return &Set{Shards: shards, Size: len(frame)}, nil
}

// Verify reports whether parity matches the data shards. All shards must be present.
func (c *Codec) Verify(s *Set) (bool, error) {
	if len(s.Shards) != c.TotalShards() {
		return false, ErrShardCount
	}
	ok, err := c.enc.Verify(s.Shards)
	if err != nil {
		return false, pkgerrors.Wrap(err, "shard: verify")
	}
	return ok, nil
}

// Join reconstructs missing data shards in place and returns the original frame.
func (c *Codec) Join(s *Set) ([]byte, error) {
	if len(s.Shards) != c.TotalShards() {
		return nil, pkgerrors.Wrapf(ErrShardCount, "got %d, want %d", len(s.Shards), c.TotalShards())
	}
	if err := c.enc.ReconstructData(s.Shards); err != nil {
		if errors.Is(err, reedsolomon.ErrTooFewShards) {
			return nil, pkgerrors.Wrapf(ErrTooManyLost, "%d of %d lost", s.Lost(), len(s.Shards))
		}
		return nil, pkgerrors.Wrap(err, "shard: reconstruct")
	}
	var buf bytes.Buffer
	buf.Grow(s.Size)
	if err := c.enc.Join(&buf, s.Shards, s.Size); err != nil {
		return nil, pkgerrors.Wrap(err, "shard: join")
	}
	return buf.Bytes(), nil
}
