package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dspruth/feistel-edu/feistel"
	fquic "github.com/dspruth/feistel-edu/feistel/transport/quic"
	"github.com/juju/ratelimit"
	q "github.com/quic-go/quic-go"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotListening  = errors.New("remote: server is not listening")
	ErrServerClosed  = errors.New("remote: server closed")
	ErrTooManyRounds = errors.New("remote: round count exceeds server limit")
)

// Server answers transform requests over QUIC.
type Server struct {
	cfg    ServerConfig
	log    logrus.FieldLogger
	bucket *ratelimit.Bucket

	ln     *fquic.Listener
	mu     sync.Mutex
	cancel context.CancelFunc
	closed atomic.Bool
	wg     sync.WaitGroup
	connID atomic.Uint64
}

// NewServer creates a server. A nil logger uses the logrus standard logger.
// Zero MaxPayload and MaxRounds select the defaults.
func NewServer(cfg ServerConfig, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = DefaultMaxPayload
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	s := &Server{cfg: cfg, log: log}
	if cfg.WriteRate > 0 {
		s.bucket = ratelimit.NewBucketWithRate(float64(cfg.WriteRate), cfg.WriteRate)
	}
	return s
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	ln, err := fquic.Listen(s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.WithField("addr", ln.AddrString()).Info("Transform server listening")
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.AddrString()
}

// Serve accepts connections until ctx is done or Close is called. In-flight
// requests are cancelled and waited for. It returns ctx.Err() or ErrServerClosed.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return ErrNotListening
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = s.ln.Close() })
	defer stop()

	for {
		conn, err := s.ln.Accept(ctx)
		if err != nil {
			cancel()
			s.wg.Wait()
			if s.closed.Load() {
				return ErrServerClosed
			}
			if parent.Err() != nil {
				return parent.Err()
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Close stops the listener and cancels the context of a running Serve.
func (s *Server) Close() error {
	if s.closed.Swap(true) || s.ln == nil {
		return nil
	}
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		// Serve closes the listener once its context is done.
		cancel()
		return nil
	}
	return s.ln.Close()
}

func (s *Server) handleConn(ctx context.Context, conn q.Connection) {
	logger := s.log.WithFields(logrus.Fields{
		"conn":   s.connID.Add(1),
		"remote": conn.RemoteAddr().String(),
	})
	logger.Debug("Accepted connection")

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		_ = conn.CloseWithError(0, "")
	}()
	for {
		st, err := conn.AcceptStream(ctx)
		if err != nil {
			logger.Debugf("Connection done, err:%v", err)
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleStream(ctx, st, logger.WithField("stream", int64(st.StreamID())))
		}()
	}
}

func (s *Server) handleStream(ctx context.Context, st q.Stream, logger logrus.FieldLogger) {
	defer st.Close()
	if s.cfg.HandleTimeout > 0 {
		_ = st.SetDeadline(time.Now().Add(s.cfg.HandleTimeout))
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.HandleTimeout)
		defer cancel()
	}

	start := time.Now()
	req, err := ReadRequest(st, s.cfg.MaxPayload)
	if err != nil {
		logger.Warnf("Read request fail, err:%v", err)
		s.reply(st, Response{Status: StatusError, Payload: []byte(err.Error())}, logger)
		return
	}
	logger = logger.WithFields(logrus.Fields{
		"mode":   req.Mode.String(),
		"rounds": req.Rounds,
		"bytes":  len(req.Data),
	})

	out, err := s.Handle(ctx, req)
	if err != nil {
		logger.Warnf("Transform fail, err:%v", err)
		s.reply(st, Response{Status: StatusError, Payload: []byte(err.Error())}, logger)
		return
	}
	s.reply(st, Response{Status: StatusOK, Payload: out}, logger)
	logger.WithField("elapsed", time.Since(start)).Info("Transform done")
}

func (s *Server) reply(st q.Stream, resp Response, logger logrus.FieldLogger) {
	var w io.Writer = st
	if s.bucket != nil {
		w = ratelimit.Writer(st, s.bucket)
	}
	if err := WriteResponse(w, resp); err != nil {
		logger.Errorf("Write response fail, err:%v", err)
	}
}

// Handle runs one request against the server limits. It is what each stream
// executes and is exported for in-process use.
func (s *Server) Handle(ctx context.Context, req Request) ([]byte, error) {
	if req.Rounds > s.cfg.MaxRounds {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRounds, req.Rounds, s.cfg.MaxRounds)
	}
	if len(req.Data) > s.cfg.MaxPayload {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(req.Data), s.cfg.MaxPayload)
	}
	c, err := feistel.New(req.Key, req.Rounds, feistel.WithWorkers(s.cfg.Workers))
	if err != nil {
		return nil, err
	}
	return c.TransformContext(ctx, req.Data, req.Mode)
}
