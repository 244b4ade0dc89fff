package envelope

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteFrame writes a 4-byte big-endian length prefix followed by frame.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(frame)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "envelope: write length")
	}
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "envelope: write frame")
	}
	return nil
}

// ReadFrame reads one length-prefixed frame. It returns io.EOF unwrapped when
// r is exhausted before a new frame starts.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "envelope: read length")
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, errors.Wrap(err, "envelope: read frame")
	}
	return frame, nil
}
