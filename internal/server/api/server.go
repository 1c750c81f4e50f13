package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/config"
	"pollcmd/internal/server/event"

	"go.uber.org/zap"
)

// Server serves the HTTP API alongside the UDP listener
type Server struct {
	config *config.APIConfig
	server *http.Server
	addr   net.Addr
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewServer creates an API server bound to cfg.Address
func NewServer(cfg *config.APIConfig, sink eventloop.Sink[event.Event], logger *zap.Logger) *Server {
	router := NewRouter(cfg, sink, logger)
	return &Server{
		config: cfg,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      router.Handler(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start binds the address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.addr = ln.Addr()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("API server started", zap.String("address", s.addr.String()))
	return nil
}

// Addr returns the bound address, valid after Start
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.wg.Wait()
	return nil
}
