package remote

import (
	"context"
	"fmt"

	"github.com/dspruth/feistel-edu/feistel"
	fquic "github.com/dspruth/feistel-edu/feistel/transport/quic"
	"github.com/pkg/errors"
	q "github.com/quic-go/quic-go"
)

// RemoteError is a failure reported by the server.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return "remote: server error: " + e.Message }

// Client sends transform requests over a single QUIC connection.
// It is safe for concurrent use; each call opens its own stream.
type Client struct {
	conn q.Connection
}

// Dial connects to a transform server.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := fquic.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &Client{conn: conn}, nil
}

// Transform runs feistel.Transform on the server. Invalid keys are rejected
// locally with feistel.ErrInvalidKey before anything is sent.
func (c *Client) Transform(ctx context.Context, data, key []byte, rounds uint32, mode feistel.Mode) ([]byte, error) {
	if len(key) == 0 {
		return nil, feistel.ErrInvalidKey
	}
	if len(key) > MaxKeySize {
		return nil, ErrKeyTooLong
	}
	if mode != feistel.Encrypt && mode != feistel.Decrypt {
		return nil, fmt.Errorf("%w: %v", feistel.ErrInvalidMode, mode)
	}

	st, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open stream")
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = st.SetDeadline(dl)
	}

	req := Request{Mode: mode, Rounds: rounds, Key: key, Data: data}
	if err := WriteRequest(st, req); err != nil {
		st.CancelRead(0)
		_ = st.Close()
		return nil, errors.Wrap(err, "write request")
	}
	// Closing the send side tells the server the request is complete.
	if err := st.Close(); err != nil {
		return nil, errors.Wrap(err, "close stream")
	}

	resp, err := ReadResponse(st, MaxPayloadLimit+2*MaxKeySize)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.Status != StatusOK {
		return nil, &RemoteError{Message: string(resp.Payload)}
	}
	return resp.Payload, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.CloseWithError(0, "")
}
