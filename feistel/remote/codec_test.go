package remote

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dspruth/feistel-edu/feistel"
)

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Request{Mode: feistel.Decrypt, Rounds: 16, Key: []byte("AAAAAA"), Data: []byte("HALLO WELT!!")}
	if err := WriteRequest(&buf, in); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	out, err := ReadRequest(&buf, DefaultMaxPayload)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if out.Mode != in.Mode || out.Rounds != in.Rounds {
		t.Fatalf("header mismatch: %+v", out)
	}
	if !bytes.Equal(out.Key, in.Key) || !bytes.Equal(out.Data, in.Data) {
		t.Fatalf("body mismatch")
	}
}

func TestRequestLimits(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRequest(&buf, Request{Key: nil}); !errors.Is(err, feistel.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := WriteRequest(&buf, Request{Key: make([]byte, MaxKeySize+1)}); !errors.Is(err, ErrKeyTooLong) {
		t.Fatalf("expected ErrKeyTooLong, got %v", err)
	}

	buf.Reset()
	if err := WriteRequest(&buf, Request{Key: []byte("k"), Data: make([]byte, 100)}); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	if _, err := ReadRequest(&buf, 99); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadRequestRejectsBadHeader(t *testing.T) {
	// mode 7
	bad := []byte{7, 0, 0, 0, 1, 0, 1, 'k', 0, 0, 0, 0}
	if _, err := ReadRequest(bytes.NewReader(bad), 10); !errors.Is(err, feistel.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	// zero-length key
	bad = []byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}
	if _, err := ReadRequest(bytes.NewReader(bad), 10); !errors.Is(err, feistel.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for _, in := range []Response{
		{Status: StatusOK, Payload: []byte("output")},
		{Status: StatusError, Payload: []byte("boom")},
		{Status: StatusOK},
	} {
		var buf bytes.Buffer
		if err := WriteResponse(&buf, in); err != nil {
			t.Fatalf("WriteResponse: %v", err)
		}
		out, err := ReadResponse(&buf, 1024)
		if err != nil {
			t.Fatalf("ReadResponse: %v", err)
		}
		if out.Status != in.Status || !bytes.Equal(out.Payload, in.Payload) {
			t.Fatalf("got %v %q, want %v %q", out.Status, out.Payload, in.Status, in.Payload)
		}
	}
	if err := WriteResponse(&bytes.Buffer{}, Response{Status: 5}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
