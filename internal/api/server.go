// Package api exposes composition status and project management over HTTP.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"storyreel/internal/compositor"
	"storyreel/internal/logging"
	"storyreel/internal/project"
)

// Composer is the composition surface the API depends on.
type Composer interface {
	Compose(ctx context.Context, req compositor.Request) (compositor.Result, error)
	Status() compositor.Status
	Running() bool
}

// ServerConfig wires the API server's collaborators.
type ServerConfig struct {
	Bind      string
	Token     string
	Store     *project.Store
	Composer  Composer
	Logger    *slog.Logger
	StartTime time.Time
}

// Server hosts the HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the API server but does not start listening.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Bind,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		logger: logging.WithComponent(cfg.Logger, "api"),
	}
}

// Start binds the listener and serves until Shutdown. It blocks.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Addr returns the bound address, useful when binding to port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api shutting down")
	return s.httpServer.Shutdown(ctx)
}
