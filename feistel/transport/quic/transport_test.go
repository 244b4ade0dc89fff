package quic

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestListenDialEcho(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		st, err := conn.AcceptStream(ctx)
		if err != nil {
			errCh <- err
			return
		}
		b, err := io.ReadAll(st)
		if err != nil {
			errCh <- err
			return
		}
		_, err = st.Write(b)
		_ = st.Close()
		errCh <- err
	}()

	conn, err := Dial(ctx, ln.AddrString())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseWithError(0, "")

	if proto := conn.ConnectionState().TLS.NegotiatedProtocol; proto != ALPN {
		t.Fatalf("negotiated %q, want %q", proto, ALPN)
	}

	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		t.Fatalf("OpenStreamSync: %v", err)
	}
	if _, err := st.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = st.Close()
	got, err := io.ReadAll(st)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "ping" {
		t.Fatalf("got %q", got)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestServerTLSConfig(t *testing.T) {
	conf, err := NewServerTLSConfig()
	if err != nil {
		t.Fatalf("NewServerTLSConfig: %v", err)
	}
	if len(conf.Certificates) != 1 || len(conf.NextProtos) != 1 || conf.NextProtos[0] != ALPN {
		t.Fatalf("unexpected config")
	}
}
