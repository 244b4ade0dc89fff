package feistel

import (
	"bytes"
	"slices"
	"testing"
)

func TestMix(t *testing.T) {
	half := []byte{0x00, 0x41, 0xff, 0x7f}
	key := []byte{0x00, 0x41, 0x01, 0xff}
	dst := make([]byte, len(half))
	Mix(dst, half, key)
	want := []byte{0x01, 0x03, 0x01, 0x7f}
	if !bytes.Equal(dst, want) {
		t.Fatalf("got %x, want %x", dst, want)
	}
}

func TestRepeatKeyIgnoresRound(t *testing.T) {
	key := []byte("reference")
	for _, round := range []uint32{0, 1, 99} {
		if !bytes.Equal(RepeatKey.RoundKey(key, round), key) {
			t.Fatalf("round %d: key changed", round)
		}
	}
}

func TestHKDFScheduleDistinctRounds(t *testing.T) {
	s := NewHKDFSchedule([]byte("salt"), []byte("feistel-test"))
	key := []byte("master key")
	k0 := s.RoundKey(key, 0)
	k1 := s.RoundKey(key, 1)
	if len(k0) != len(key) || len(k1) != len(key) {
		t.Fatalf("unexpected round key length")
	}
	if bytes.Equal(k0, k1) {
		t.Fatalf("round keys should differ")
	}
	if !bytes.Equal(k0, s.RoundKey(key, 0)) {
		t.Fatalf("schedule is not deterministic")
	}
}

func TestHKDFScheduleLongKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x5a}, hkdfSegment+100)
	rk := NewHKDFSchedule(nil, nil).RoundKey(key, 3)
	if len(rk) != len(key) {
		t.Fatalf("got %d bytes, want %d", len(rk), len(key))
	}
	if bytes.Equal(rk[:100], rk[hkdfSegment:]) {
		t.Fatalf("segments should not repeat")
	}
}

func TestRoundOrder(t *testing.T) {
	if got := slices.Collect(RoundOrder(4, Encrypt)); !slices.Equal(got, []uint32{0, 1, 2, 3}) {
		t.Fatalf("encrypt order %v", got)
	}
	if got := slices.Collect(RoundOrder(4, Decrypt)); !slices.Equal(got, []uint32{3, 2, 1, 0}) {
		t.Fatalf("decrypt order %v", got)
	}
	if got := slices.Collect(RoundOrder(0, Decrypt)); len(got) != 0 {
		t.Fatalf("zero rounds yielded %v", got)
	}
}

func TestBadKeyScheduleRejected(t *testing.T) {
	short := KeyScheduleFunc(func(key []byte, _ uint32) []byte { return key[:1] })
	if _, err := New([]byte("abc"), 2, WithKeySchedule(short)); err == nil {
		t.Fatalf("expected error for short round key")
	}
}

func TestBadKeyScheduleRejectedUncached(t *testing.T) {
	short := KeyScheduleFunc(func(key []byte, _ uint32) []byte { return key[:1] })
	if _, err := New([]byte("abc"), maxCachedRounds+1, WithKeySchedule(short)); err == nil {
		t.Fatalf("expected error for short round key")
	}
}

func TestRoundOrderUnknownModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown mode")
		}
	}()
	RoundOrder(3, Mode(7))
}

func TestCustomRoundFunc(t *testing.T) {
	xorOnly := func(dst, half, rk []byte) {
		for i := range half {
			dst[i] = half[i] ^ rk[i]
		}
	}
	c, err := New([]byte("key"), 6, WithRoundFunc(xorOnly))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte("custom round")
	if !bytes.Equal(c.Decrypt(c.Encrypt(data)), data) {
		t.Fatalf("round trip mismatch with custom round function")
	}
}
