// Package server serves a compiled site for local preview.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

// Options configures a Server.
type Options struct {
	Addr string
	// Root is the directory served at "/".
	Root string
	// Registry, when set, is exposed at /metrics.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Server is a static file server with optional metrics.
type Server struct {
	opts Options
	srv  *http.Server

	mu sync.Mutex
	ln net.Listener
}

// New creates a server; call Start to listen.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{opts: opts}
}

// Handler returns the routed handler, wrapped in logging and recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.opts.Root)))
	if s.opts.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	return chain(s.opts.Logger, mux)
}

// Start binds the address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("preview server stopped", logfields.Error(err))
		}
	}()
	s.opts.Logger.Info("preview server listening", logfields.Addr(s.URL()))
	return nil
}

// URL is the base URL of a started server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	return nil
}

// Run starts the server and blocks until ctx ends, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}
