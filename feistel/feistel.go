package feistel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey  = errors.New("feistel: key must not be empty")
	ErrInvalidMode = errors.New("feistel: unknown mode")
)

// Mode selects the round traversal direction.
type Mode uint8

const (
	Encrypt Mode = iota
	Decrypt
)

func (m Mode) String() string {
	switch m {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode accepts "encrypt"/"enc"/"e" and "decrypt"/"dec"/"d", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encrypt", "enc", "e":
		return Encrypt, nil
	case "decrypt", "dec", "d":
		return Decrypt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Transform runs the reference transform: every round uses key unchanged and
// the round function is Mix. The result is block aligned and at least len(data) long.
func Transform(data, key []byte, rounds uint32, mode Mode) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}
	if mode != Encrypt && mode != Decrypt {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	c, err := New(key, rounds)
	if err != nil {
		return nil, err
	}
	return c.Transform(data, mode), nil
}

// Cipher is a keyed Feistel engine with a fixed round count.
// It holds no mutable state after construction and is safe for concurrent use.
type Cipher struct {
	key       []byte
	rounds    uint32
	repeat    bool     // schedule is RepeatKey, every round uses key
	roundKeys [][]byte // nil when round keys are derived on demand
	f         RoundFunc
	schedule  KeySchedule
	workers   int
}

// maxCachedRounds bounds the round-key table New builds for derived schedules.
// Longer schedules derive each round key when it is used.
const maxCachedRounds = 1 << 12

// Option configures a Cipher.
type Option func(*Cipher)

// WithKeySchedule replaces the per-round key derivation. The default is RepeatKey.
func WithKeySchedule(s KeySchedule) Option {
	return func(c *Cipher) {
		if s != nil {
			c.schedule = s
		}
	}
}

// WithRoundFunc replaces the round function. The default is Mix.
func WithRoundFunc(f RoundFunc) Option {
	return func(c *Cipher) {
		if f != nil {
			c.f = f
		}
	}
}

// WithWorkers sets the goroutine limit used by TransformContext.
// Values <= 0 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(c *Cipher) { c.workers = n }
}

// New creates a cipher for key and rounds. The key is copied.
func New(key []byte, rounds uint32, opts ...Option) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}
	c := &Cipher{
		key:      append([]byte(nil), key...),
		rounds:   rounds,
		f:        Mix,
		schedule: RepeatKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers <= 0 {
		c.workers = DefaultWorkers
	}

	_, c.repeat = c.schedule.(repeatKey)
	if c.repeat || rounds == 0 {
		return c, nil
	}
	if rounds > maxCachedRounds {
		if _, err := c.deriveRoundKey(0); err != nil {
			return nil, err
		}
		return c, nil
	}
	c.roundKeys = make([][]byte, rounds)
	for i := range c.roundKeys {
		rk, err := c.deriveRoundKey(uint32(i))
		if err != nil {
			return nil, err
		}
		c.roundKeys[i] = rk
	}
	return c, nil
}

func (c *Cipher) deriveRoundKey(round uint32) ([]byte, error) {
	rk := c.schedule.RoundKey(c.key, round)
	if len(rk) != len(c.key) {
		return nil, fmt.Errorf("feistel: round key %d has length %d, want %d", round, len(rk), len(c.key))
	}
	return rk, nil
}

// roundKey returns the key for round. Schedules too long to cache are derived
// here and panic if they return a key of the wrong length.
func (c *Cipher) roundKey(round uint32) []byte {
	switch {
	case c.repeat:
		return c.key
	case c.roundKeys != nil:
		return c.roundKeys[round]
	}
	rk, err := c.deriveRoundKey(round)
	if err != nil {
		panic(err)
	}
	return rk
}

// BlockSize returns twice the key length.
func (c *Cipher) BlockSize() int { return 2 * len(c.key) }

// Rounds returns the configured round count.
func (c *Cipher) Rounds() uint32 { return c.rounds }

// Encrypt is Transform(data, Encrypt).
func (c *Cipher) Encrypt(data []byte) []byte { return c.Transform(data, Encrypt) }

// Decrypt is Transform(data, Decrypt). Padding added by Encrypt is not removed.
func (c *Cipher) Decrypt(data []byte) []byte { return c.Transform(data, Decrypt) }

// Transform processes data block by block on the calling goroutine.
// It panics if mode is neither Encrypt nor Decrypt; the package-level
// Transform and TransformContext report ErrInvalidMode instead.
func (c *Cipher) Transform(data []byte, mode Mode) []byte {
	bs := c.BlockSize()
	out := make([]byte, PaddedLen(len(data), bs))
	order := RoundOrder(c.rounds, mode)
	s := c.newScratch()
	for i, block := range Blocks(data, bs) {
		c.processBlock(out[i*bs:(i+1)*bs], block, order, s)
	}
	return out
}
