// Package server exposes the board over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/nibzard/pulse/internal/board"
)

// BuildFunc produces a fresh board document. The server calls it on
// demand and deduplicates concurrent calls.
type BuildFunc func(ctx context.Context) (*board.Board, error)

// cacheControl tells downstream caches the board stays good for five
// minutes and may be served stale for thirty while revalidating.
const cacheControl = "public, s-maxage=300, stale-while-revalidate=1800"

// Server serves the aggregated board as CORS-open JSON on every path.
type Server struct {
	addr   string
	build  BuildFunc
	logger *log.Logger
	clock  func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a server that listens on addr and rebuilds the board per
// request via build.
func New(addr string, build BuildFunc, logger *log.Logger) *Server {
	return &Server{
		addr:   addr,
		build:  build,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = listener

	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if ctx != nil {
		srv.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = srv

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve error", "err", err)
		}
	}()

	s.logger.Info("serving board", "addr", listener.Addr().String())
	return nil
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ServeHTTP answers every path with the board document. Concurrent
// requests share one aggregation run.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := s.clock()
	v, err, shared := s.group.Do("board", func() (interface{}, error) {
		b, err := s.build(r.Context())
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(b, "", "  ")
	})
	if err != nil {
		s.logger.Error("building board failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("board built", "took", s.clock().Sub(start), "shared", shared)

	body := v.([]byte)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("writing response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
