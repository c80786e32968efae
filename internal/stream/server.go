package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/zeusync/cellsim/internal/core/observability/log"
)

const Path = "/ws"

// Server exposes a Hub over HTTP at Path.
type Server struct {
	hub    *Hub
	srv    *http.Server
	ln     net.Listener
	logger log.Log
}

func NewServer(addr string, hub *Hub, logger log.Log) *Server {
	mux := http.NewServeMux()
	mux.Handle(Path, hub)
	return &Server{
		hub:    hub,
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger.With(log.String("component", "stream")),
	}
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("stream server stopped", log.Error(err))
		}
	}()
	s.logger.Info("streaming snapshots", log.String("addr", ln.Addr().String()), log.String("path", Path))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}
