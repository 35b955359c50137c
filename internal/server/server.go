package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server owns the HTTP listener. It replaces a process wide server value with
// an explicit Start / Stop lifecycle.
type Server struct {
	srv *http.Server
	log *slog.Logger

	mu    sync.Mutex
	ln    net.Listener
	errCh chan error
}

func New(addr string, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
		},
		log:   log,
		errCh: make(chan error, 1),
	}
}

// Start binds the listener and serves in the background. Serve errors other
// than a clean shutdown are delivered on Errors.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.errCh <- err
	}()

	s.log.Info("query-proxy listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Stop waits for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) Errors() <-chan error {
	return s.errCh
}
