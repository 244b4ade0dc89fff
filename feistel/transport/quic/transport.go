package quic

import (
	"context"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
)

// DefaultIdleTimeout closes connections that carry no requests.
const DefaultIdleTimeout = 30 * time.Second

func newConfig() *q.Config {
	return &q.Config{
		MaxIdleTimeout:  DefaultIdleTimeout,
		KeepAlivePeriod: DefaultIdleTimeout / 3,
	}
}

// Listener accepts QUIC connections for the transform service.
type Listener struct {
	inner *q.Listener
}

func Listen(addr string) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, newConfig())
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

func (l *Listener) Accept(ctx context.Context) (q.Connection, error) {
	return l.inner.Accept(ctx)
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

func Dial(ctx context.Context, addr string) (q.Connection, error) {
	return q.DialAddr(ctx, addr, NewClientTLSConfig(), newConfig())
}
