package remote

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dspruth/feistel-edu/feistel"
)

const (
	// MaxKeySize is the largest key the wire format can carry.
	MaxKeySize = 1<<16 - 1
	// DefaultMaxPayload bounds request data unless configured otherwise (16 MiB).
	DefaultMaxPayload = 16 << 20
	// MaxPayloadLimit is the hard cap on any request or response body (64 MiB).
	MaxPayloadLimit = 64 << 20
)

var (
	ErrPayloadTooLarge = errors.New("remote: payload too large")
	ErrKeyTooLong      = errors.New("remote: key longer than 65535 bytes")
	ErrInvalidStatus   = errors.New("remote: invalid response status")
)

// Request asks the server to run one transform.
// Format:
//
//	1 byte: mode (0 encrypt, 1 decrypt)
//	4 bytes: rounds
//	2 bytes: key length
//	K bytes: key
//	4 bytes: data length
//	N bytes: data
type Request struct {
	Mode   feistel.Mode
	Rounds uint32
	Key    []byte
	Data   []byte
}

func WriteRequest(w io.Writer, req Request) error {
	if len(req.Key) == 0 {
		return feistel.ErrInvalidKey
	}
	if len(req.Key) > MaxKeySize {
		return ErrKeyTooLong
	}
	if len(req.Data) > MaxPayloadLimit {
		return ErrPayloadTooLarge
	}

	bw := bufio.NewWriter(w)
	var hdr [7]byte
	hdr[0] = byte(req.Mode)
	binary.BigEndian.PutUint32(hdr[1:5], req.Rounds)
	binary.BigEndian.PutUint16(hdr[5:7], uint16(len(req.Key)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := bw.Write(req.Key); err != nil {
		return err
	}
	if err := writeBlob(bw, req.Data); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadRequest decodes one request, rejecting data longer than maxPayload.
func ReadRequest(r io.Reader, maxPayload int) (Request, error) {
	br := bufio.NewReader(r)
	var hdr [7]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return Request{}, err
	}
	req := Request{
		Mode:   feistel.Mode(hdr[0]),
		Rounds: binary.BigEndian.Uint32(hdr[1:5]),
	}
	if req.Mode != feistel.Encrypt && req.Mode != feistel.Decrypt {
		return Request{}, fmt.Errorf("%w: %d", feistel.ErrInvalidMode, hdr[0])
	}
	keyLen := binary.BigEndian.Uint16(hdr[5:7])
	if keyLen == 0 {
		return Request{}, feistel.ErrInvalidKey
	}
	req.Key = make([]byte, keyLen)
	if _, err := io.ReadFull(br, req.Key); err != nil {
		return Request{}, err
	}
	data, err := readBlob(br, maxPayload)
	if err != nil {
		return Request{}, err
	}
	req.Data = data
	return req, nil
}

// Status is the first byte of a response.
type Status uint8

const (
	StatusOK    Status = 0
	StatusError Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Response carries the transformed bytes or, for StatusError, a message.
// Format:
//
//	1 byte: status
//	4 bytes: payload length
//	N bytes: payload
type Response struct {
	Status  Status
	Payload []byte
}

func WriteResponse(w io.Writer, resp Response) error {
	if resp.Status != StatusOK && resp.Status != StatusError {
		return ErrInvalidStatus
	}
	bw := bufio.NewWriter(w)
	if err := bw.WriteByte(byte(resp.Status)); err != nil {
		return err
	}
	if err := writeBlob(bw, resp.Payload); err != nil {
		return err
	}
	return bw.Flush()
}

func ReadResponse(r io.Reader, maxPayload int) (Response, error) {
	br := bufio.NewReader(r)
	st, err := br.ReadByte()
	if err != nil {
		return Response{}, err
	}
	resp := Response{Status: Status(st)}
	if resp.Status != StatusOK && resp.Status != StatusError {
		return Response{}, fmt.Errorf("%w: %d", ErrInvalidStatus, st)
	}
	resp.Payload, err = readBlob(br, maxPayload)
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

func writeBlob(w io.Writer, b []byte) error {
	if len(b) > MaxPayloadLimit+2*MaxKeySize {
		return ErrPayloadTooLarge
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(b) > 0 {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readBlob(r io.Reader, maxLen int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if uint64(n) > uint64(maxLen) {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, maxLen)
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}
